package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
)

func (s *Store) InsertIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.Upvoters == nil {
		issue.Upvoters = []primitive.ObjectID{}
	}
	_, err := s.issues.InsertOne(ctx, issue)
	return wrapErr(err)
}

func (s *Store) FindIssues(ctx context.Context, filter store.IssueFilter) ([]models.Issue, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.issues.Find(ctx, query, findOptions)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, wrapErr(err)
	}
	return issues, nil
}

func (s *Store) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	if err := s.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("issue")
		}
		return nil, wrapErr(err)
	}
	return &issue, nil
}

func (s *Store) FindNearby(ctx context.Context, lon, lat, maxMeters float64, limit int64) ([]models.Issue, error) {
	// $near sorts by distance and requires the 2dsphere index.
	query := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lon, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}

	cursor, err := s.issues.Find(ctx, query, options.Find().SetLimit(limit))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, wrapErr(err)
	}
	return issues, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.issues.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("issue")
		}
		return nil, wrapErr(err)
	}
	return &issue, nil
}

func (s *Store) ToggleUpvote(ctx context.Context, id, voter primitive.ObjectID) (*models.Issue, error) {
	// One server-side pipeline update: flip membership, then recount from
	// the resulting set. The set and the count can never be observed apart.
	current := bson.M{"$ifNull": bson.A{"$upvoters", bson.A{}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"upvoters": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{voter, current}},
				bson.M{"$setDifference": bson.A{current, bson.A{voter}}},
				bson.M{"$concatArrays": bson.A{current, bson.A{voter}}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"upvoteCount": bson.M{"$size": "$upvoters"},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.issues.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("issue")
		}
		return nil, wrapErr(err)
	}
	return &issue, nil
}

func (s *Store) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	session, err := s.client.StartSession()
	if err != nil {
		return wrapErr(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.comments.DeleteMany(sc, bson.M{"issue": id}); err != nil {
			return nil, err
		}
		res, err := s.issues.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, apperrors.NotFound("issue")
		}
		return nil, nil
	})
	return wrapErr(err)
}
