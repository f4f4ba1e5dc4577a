package services

import (
	"context"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
)

// Bounded retry for atomic updates that fail with a transient conflict.
const (
	maxUpdateAttempts = 3
	retryBaseDelay    = 25 * time.Millisecond
)

// IssueService implements the issue lifecycle: create, list, get, status
// transitions, upvote toggling and cascading deletion.
type IssueService struct {
	issues   store.IssueStore
	comments store.CommentStore
	policy   Policy
	log      *zap.Logger
}

func NewIssueService(issues store.IssueStore, comments store.CommentStore, log *zap.Logger) *IssueService {
	return &IssueService{issues: issues, comments: comments, log: log}
}

// CreateIssueInput carries the caller-supplied fields for a new issue.
// Coordinates, when present, are a resolved [longitude, latitude] pair;
// geocoding already happened upstream.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    models.IssueCategory
	Address     string
	ImageURL    *string
	Coordinates []float64
}

// IssueDetail is an issue together with its full comment thread.
type IssueDetail struct {
	models.Issue
	Comments []models.Comment `json:"comments"`
}

func (s *IssueService) Create(ctx context.Context, input CreateIssueInput, actor models.Identity) (*models.Issue, error) {
	if !s.policy.CanReport(actor) {
		return nil, apperrors.Forbidden("authentication required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.Validation("description is required")
	}
	if !input.Category.Valid() {
		return nil, apperrors.Validation("invalid category")
	}

	location, err := locationFromCoordinates(input.Coordinates)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	issue := &models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    location,
		Address:     input.Address,
		ImageURL:    input.ImageURL,
		Status:      models.StatusReported,
		ReportedBy:  actor.AccountID,
		Upvoters:    []primitive.ObjectID{},
		UpvoteCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.issues.InsertIssue(ctx, issue); err != nil {
		return nil, err
	}
	s.log.Info("issue created",
		zap.String("issue", issue.ID.Hex()),
		zap.String("category", string(issue.Category)),
		zap.String("reportedBy", actor.AccountID.Hex()))
	return issue, nil
}

// locationFromCoordinates validates the optional pair: either absent, or
// exactly two finite numbers. Values are stored verbatim; there is no
// longitude/latitude range check.
func locationFromCoordinates(coords []float64) (*models.GeoPoint, error) {
	if coords == nil {
		return nil, nil
	}
	if len(coords) != 2 {
		return nil, apperrors.Validation("coordinates must be [longitude, latitude]")
	}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, apperrors.Validation("coordinates must be finite numbers")
		}
	}
	return models.NewGeoPoint(coords[0], coords[1]), nil
}

func (s *IssueService) List(ctx context.Context, filter store.IssueFilter) ([]models.Issue, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.Validation("invalid status filter")
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, apperrors.Validation("invalid category filter")
	}
	return s.issues.FindIssues(ctx, filter)
}

func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*IssueDetail, error) {
	issue, err := s.issues.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &IssueDetail{Issue: *issue, Comments: comments}, nil
}

// SetStatus is the only way status or updatedAt change after creation. The
// state machine is flat: any status may move to any other.
func (s *IssueService) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, actor models.Identity) (*models.Issue, error) {
	if !s.policy.CanSetStatus(actor) {
		return nil, apperrors.Forbidden("admin role required")
	}
	if !status.Valid() {
		return nil, apperrors.Validation("invalid status")
	}

	var issue *models.Issue
	err := s.withRetry(ctx, func() error {
		var err error
		issue, err = s.issues.UpdateStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("issue status changed",
		zap.String("issue", id.Hex()),
		zap.String("status", string(status)),
		zap.String("admin", actor.AccountID.Hex()))
	return issue, nil
}

// ToggleUpvote flips the caller's upvote and returns the new count. Two
// toggles in a row from the same caller restore the original state.
func (s *IssueService) ToggleUpvote(ctx context.Context, id primitive.ObjectID, actor models.Identity) (int, error) {
	if !s.policy.CanUpvote(actor) {
		return 0, apperrors.Forbidden("authentication required")
	}

	var issue *models.Issue
	err := s.withRetry(ctx, func() error {
		var err error
		issue, err = s.issues.ToggleUpvote(ctx, id, actor.AccountID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return issue.UpvoteCount, nil
}

// Delete removes the issue and all of its comments as one unit.
func (s *IssueService) Delete(ctx context.Context, id primitive.ObjectID, actor models.Identity) error {
	issue, err := s.issues.GetIssue(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(actor, issue) {
		return apperrors.Forbidden("only an admin or the reporter may delete an issue")
	}

	if err := s.withRetry(ctx, func() error { return s.issues.DeleteCascade(ctx, id) }); err != nil {
		return err
	}
	s.log.Info("issue deleted",
		zap.String("issue", id.Hex()),
		zap.String("deletedBy", actor.AccountID.Hex()))
	return nil
}

// Nearby returns issues with a location within radiusMeters of the point,
// nearest first.
func (s *IssueService) Nearby(ctx context.Context, lon, lat, radiusMeters float64, limit int64) ([]models.Issue, error) {
	for _, c := range []float64{lon, lat, radiusMeters} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, apperrors.Validation("coordinates must be finite numbers")
		}
	}
	if radiusMeters <= 0 {
		return nil, apperrors.Validation("radius must be positive")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.issues.FindNearby(ctx, lon, lat, radiusMeters, limit)
}

// withRetry re-runs fn a bounded number of times while it fails with the
// conflict kind, backing off between attempts.
func (s *IssueService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err = fn()
		if !apperrors.IsConflict(err) {
			return err
		}
		s.log.Warn("retrying after write conflict", zap.Int("attempt", attempt+1))
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.KindUnavailable, "canceled while retrying", ctx.Err())
		case <-time.After(retryBaseDelay << attempt):
		}
	}
	return err
}
