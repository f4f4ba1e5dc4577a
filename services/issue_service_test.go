package services

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
	"civicreport-be/store/memstore"
)

func newTestServices(t *testing.T) (*IssueService, *CommentService) {
	t.Helper()
	st := memstore.New()
	logger := zap.NewNop()
	return NewIssueService(st, st, logger), NewCommentService(st, st, logger)
}

func citizen() models.Identity {
	return models.Identity{AccountID: primitive.NewObjectID(), Role: models.RoleCitizen}
}

func admin() models.Identity {
	return models.Identity{AccountID: primitive.NewObjectID(), Role: models.RoleAdmin}
}

func validInput() CreateIssueInput {
	return CreateIssueInput{
		Title:       "Pothole on 5th Avenue",
		Description: "Deep pothole near the bus stop",
		Category:    models.Pothole,
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()

	issue, err := svc.Create(context.Background(), validInput(), reporter)
	require.NoError(t, err)

	assert.False(t, issue.ID.IsZero())
	assert.Equal(t, models.StatusReported, issue.Status)
	assert.Equal(t, reporter.AccountID, issue.ReportedBy)
	assert.Empty(t, issue.Upvoters)
	assert.Equal(t, 0, issue.UpvoteCount)
	assert.Nil(t, issue.Location)
	assert.False(t, issue.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()

	tests := []struct {
		name  string
		tweak func(*CreateIssueInput)
	}{
		{"missing title", func(in *CreateIssueInput) { in.Title = "  " }},
		{"missing description", func(in *CreateIssueInput) { in.Description = "" }},
		{"unknown category", func(in *CreateIssueInput) { in.Category = "Graffiti" }},
		{"one coordinate", func(in *CreateIssueInput) { in.Coordinates = []float64{77.59} }},
		{"three coordinates", func(in *CreateIssueInput) { in.Coordinates = []float64{1, 2, 3} }},
		{"nan coordinate", func(in *CreateIssueInput) { in.Coordinates = []float64{math.NaN(), 12.97} }},
		{"infinite coordinate", func(in *CreateIssueInput) { in.Coordinates = []float64{77.59, math.Inf(1)} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.tweak(&input)
			_, err := svc.Create(context.Background(), input, reporter)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateUnauthenticated(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Create(context.Background(), validInput(), models.Identity{})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateCoordinatesRoundTrip(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()

	input := validInput()
	input.Coordinates = []float64{77.59, 12.97}
	created, err := svc.Create(context.Background(), input, reporter)
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Location)
	assert.Equal(t, "Point", detail.Location.Type)
	assert.Equal(t, []float64{77.59, 12.97}, detail.Location.Coordinates)
}

func TestCreateOutOfRangeLongitudeStoredVerbatim(t *testing.T) {
	// No range check on purpose: any finite pair is stored as given.
	svc, _ := newTestServices(t)

	input := validInput()
	input.Coordinates = []float64{200, 12.9}
	created, err := svc.Create(context.Background(), input, citizen())
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Location)
	assert.Equal(t, []float64{200, 12.9}, detail.Location.Coordinates)
}

func TestListFilterAndOrder(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()

	categories := []models.IssueCategory{models.Pothole, models.Garbage, models.Pothole}
	for _, cat := range categories {
		input := validInput()
		input.Title = string(cat) + " issue"
		input.Category = cat
		_, err := svc.Create(context.Background(), input, reporter)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := svc.List(context.Background(), store.IssueFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt), "expected newest first")
	}

	cat := models.Pothole
	potholes, err := svc.List(context.Background(), store.IssueFilter{Category: &cat})
	require.NoError(t, err)
	require.Len(t, potholes, 2)
	for _, issue := range potholes {
		assert.Equal(t, models.Pothole, issue.Category)
	}

	status := models.StatusResolved
	resolved, err := svc.List(context.Background(), store.IssueFilter{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestListInvalidFilter(t *testing.T) {
	svc, _ := newTestServices(t)
	bad := models.IssueStatus("Closed")
	_, err := svc.List(context.Background(), store.IssueFilter{Status: &bad})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSetStatusAuthorization(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), issue.ID, models.StatusAcknowledged, citizen())
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.SetStatus(context.Background(), issue.ID, models.StatusAcknowledged, models.Identity{})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestSetStatusByAdmin(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)
	before := issue.UpdatedAt

	time.Sleep(2 * time.Millisecond)
	updated, err := svc.SetStatus(context.Background(), issue.ID, models.StatusResolved, admin())
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(before))

	detail, err := svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, detail.Status)
}

func TestSetStatusValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), issue.ID, "Closed", admin())
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SetStatus(context.Background(), primitive.NewObjectID(), models.StatusResolved, admin())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSetStatusPermissiveTransitions(t *testing.T) {
	// Flat state machine: Resolved may move back to Reported.
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	boss := admin()
	_, err = svc.SetStatus(context.Background(), issue.ID, models.StatusResolved, boss)
	require.NoError(t, err)
	updated, err := svc.SetStatus(context.Background(), issue.ID, models.StatusReported, boss)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, updated.Status)
}

func TestToggleUpvote(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	voter := citizen()
	count, err := svc.ToggleUpvote(context.Background(), issue.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	detail, err := svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasUpvoted(voter.AccountID))
	assert.Equal(t, len(detail.Upvoters), detail.UpvoteCount)

	// Second toggle from the same caller withdraws the upvote.
	count, err = svc.ToggleUpvote(context.Background(), issue.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	detail, err = svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.False(t, detail.HasUpvoted(voter.AccountID))
	assert.Empty(t, detail.Upvoters)
}

func TestToggleUpvoteErrors(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	_, err = svc.ToggleUpvote(context.Background(), primitive.NewObjectID(), citizen())
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.ToggleUpvote(context.Background(), issue.ID, models.Identity{})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestToggleUpvoteConcurrent(t *testing.T) {
	svc, _ := newTestServices(t)
	issue, err := svc.Create(context.Background(), validInput(), citizen())
	require.NoError(t, err)

	const voters = 32
	identities := make([]models.Identity, voters)
	for i := range identities {
		identities[i] = citizen()
	}

	var wg sync.WaitGroup
	for _, id := range identities {
		wg.Add(1)
		go func(actor models.Identity) {
			defer wg.Done()
			_, err := svc.ToggleUpvote(context.Background(), issue.ID, actor)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	detail, err := svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, detail.UpvoteCount)
	assert.Equal(t, len(detail.Upvoters), detail.UpvoteCount)

	// Everyone withdraws concurrently; the issue returns to zero.
	for _, id := range identities {
		wg.Add(1)
		go func(actor models.Identity) {
			defer wg.Done()
			_, err := svc.ToggleUpvote(context.Background(), issue.ID, actor)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	detail, err = svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.UpvoteCount)
	assert.Empty(t, detail.Upvoters)
}

func TestDeleteAuthorization(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()
	issue, err := svc.Create(context.Background(), validInput(), reporter)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), issue.ID, citizen())
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, svc.Delete(context.Background(), issue.ID, reporter))

	other, err := svc.Create(context.Background(), validInput(), reporter)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), other.ID, admin()))
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestServices(t)
	err := svc.Delete(context.Background(), primitive.NewObjectID(), admin())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteCascadesComments(t *testing.T) {
	svc, comments := newTestServices(t)
	reporter := citizen()
	issue, err := svc.Create(context.Background(), validInput(), reporter)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := comments.Add(context.Background(), issue.ID, "update", admin())
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(context.Background(), issue.ID, reporter))

	_, err = svc.Get(context.Background(), issue.ID)
	assert.True(t, apperrors.IsNotFound(err))

	remaining, err := comments.List(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestNearby(t *testing.T) {
	svc, _ := newTestServices(t)
	reporter := citizen()

	// Bengaluru city center, a point ~1.5km away, and one far away.
	spots := []struct {
		title  string
		coords []float64
	}{
		{"center", []float64{77.5946, 12.9716}},
		{"close", []float64{77.6050, 12.9800}},
		{"faraway", []float64{72.8777, 19.0760}},
	}
	for _, s := range spots {
		input := validInput()
		input.Title = s.title
		input.Coordinates = s.coords
		_, err := svc.Create(context.Background(), input, reporter)
		require.NoError(t, err)
	}
	noLoc := validInput()
	noLoc.Title = "no location"
	_, err := svc.Create(context.Background(), noLoc, reporter)
	require.NoError(t, err)

	nearby, err := svc.Nearby(context.Background(), 77.5946, 12.9716, 10000, 10)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, "center", nearby[0].Title)
	assert.Equal(t, "close", nearby[1].Title)
}

func TestNearbyValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Nearby(context.Background(), math.NaN(), 12.97, 1000, 10)
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.Nearby(context.Background(), 77.59, 12.97, -5, 10)
	assert.True(t, apperrors.IsValidation(err))
}
