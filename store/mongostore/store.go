// Package mongostore is the production store. Per-record atomicity comes
// from server-side conditional updates (FindOneAndUpdate with a pipeline);
// the delete cascade runs inside a session transaction.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicreport-be/apperrors"
)

type Store struct {
	client   *mongo.Client
	issues   *mongo.Collection
	comments *mongo.Collection
	users    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		client:   db.Client(),
		issues:   db.Collection("issues"),
		comments: db.Collection("comments"),
		users:    db.Collection("users"),
	}
}

// EnsureIndexes creates the indexes the listing and spatial queries rely on:
// a 2dsphere index on issue locations, equality indexes on status and
// category, an (issue, createdAt) index for ordered comment retrieval and a
// unique email index for accounts.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.issues.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issue", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// wrapErr translates driver errors into the engine's error kinds so raw
// storage errors never cross the store boundary.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("record")
	}
	if isTransient(err) {
		return apperrors.Wrap(apperrors.KindConflict, "transient write conflict", err)
	}
	return apperrors.Unavailable(err)
}

func isTransient(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") ||
			se.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
