// Package store defines the persistence contracts of the engine. The atomic
// update guarantees spelled out on IssueStore are part of the contract: an
// implementation that reads, modifies and writes back without a guard is
// incorrect under concurrent callers.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/models"
)

// IssueFilter selects issues for listing. A nil field matches all values.
type IssueFilter struct {
	Status   *models.IssueStatus
	Category *models.IssueCategory
}

// IssueStore owns the issue lifecycle.
type IssueStore interface {
	// InsertIssue persists a new issue record.
	InsertIssue(ctx context.Context, issue *models.Issue) error

	// FindIssues returns issues matching the filter, newest first by createdAt.
	FindIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error)

	// GetIssue returns one issue or a NotFound error.
	GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)

	// FindNearby returns issues whose location lies within maxMeters of the
	// given point, nearest first. Issues without a location never match.
	FindNearby(ctx context.Context, lon, lat, maxMeters float64, limit int64) ([]models.Issue, error)

	// UpdateStatus atomically sets the status and refreshes updatedAt,
	// returning the updated issue.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error)

	// ToggleUpvote atomically flips the voter's membership in upvoters and
	// recomputes upvoteCount in the same update. No observer may see the
	// set and the count disagree.
	ToggleUpvote(ctx context.Context, id, voter primitive.ObjectID) (*models.Issue, error)

	// DeleteCascade removes the issue and every comment attached to it as
	// one unit: no concurrent reader observes the issue gone while its
	// comments remain, or the reverse.
	DeleteCascade(ctx context.Context, id primitive.ObjectID) error
}

// CommentStore owns the comment lifecycle. Deletion of a live issue's
// comments is only ever initiated through IssueStore.DeleteCascade.
type CommentStore interface {
	// InsertComment persists a new comment record. The issue's existence is
	// verified in the same atomic step as the write, so a concurrent
	// DeleteCascade can never leave the comment orphaned; a missing issue
	// yields NotFound.
	InsertComment(ctx context.Context, comment *models.Comment) error

	// ListComments returns the issue's comments, oldest first. An unknown
	// issue id yields an empty slice, not an error.
	ListComments(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error)
}

// UserStore holds account records for the identity glue.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}
