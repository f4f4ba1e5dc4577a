package memstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/apperrors"
	"civicreport-be/models"
)

func (s *Store) InsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}

	// The existence check and the append share the map lock, so a cascade
	// cannot land between them and leave a comment without an issue.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[comment.Issue]; !ok {
		return apperrors.NotFound("issue")
	}
	s.comments[comment.Issue] = append(s.comments[comment.Issue], *comment)
	return nil
}

func (s *Store) ListComments(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Append order is creation order, so this is already oldest first.
	return append([]models.Comment{}, s.comments[issueID]...), nil
}
