package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicreport-be/apperrors"
	"civicreport-be/models"
)

func (s *Store) InsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}

	session, err := s.client.StartSession()
	if err != nil {
		return wrapErr(err)
	}
	defer session.EndSession(ctx)

	// Asserting the issue still exists inside the same transaction as the
	// insert keeps a concurrent delete cascade from leaving an orphan.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		idOnly := options.FindOne().SetProjection(bson.M{"_id": 1})
		if err := s.issues.FindOne(sc, bson.M{"_id": comment.Issue}, idOnly).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperrors.NotFound("issue")
			}
			return nil, err
		}
		_, err := s.comments.InsertOne(sc, comment)
		return nil, err
	})
	return wrapErr(err)
}

func (s *Store) ListComments(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.comments.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, wrapErr(err)
	}
	return comments, nil
}
