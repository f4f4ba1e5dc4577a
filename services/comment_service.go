package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
)

// CommentService implements the comment thread attached to an issue.
type CommentService struct {
	issues   store.IssueStore
	comments store.CommentStore
	policy   Policy
	log      *zap.Logger
}

func NewCommentService(issues store.IssueStore, comments store.CommentStore, log *zap.Logger) *CommentService {
	return &CommentService{issues: issues, comments: comments, log: log}
}

// Add attaches a comment to an existing issue. isOfficialUpdate is computed
// once, from the role the author holds right now.
func (s *CommentService) Add(ctx context.Context, issueID primitive.ObjectID, text string, actor models.Identity) (*models.Comment, error) {
	if !s.policy.CanComment(actor) {
		return nil, apperrors.Forbidden("authentication required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("text is required")
	}
	if _, err := s.issues.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:             text,
		Author:           actor.AccountID,
		Issue:            issueID,
		IsOfficialUpdate: actor.IsAdmin(),
		CreatedAt:        time.Now(),
	}
	if err := s.comments.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	s.log.Info("comment added",
		zap.String("issue", issueID.Hex()),
		zap.String("author", actor.AccountID.Hex()),
		zap.Bool("official", comment.IsOfficialUpdate))
	return comment, nil
}

// List returns an issue's comments oldest first. An unknown issue id yields
// an empty list; callers that need existence must check via the issue side.
func (s *CommentService) List(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	return s.comments.ListComments(ctx, issueID)
}
