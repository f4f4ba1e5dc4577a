package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
)

func newIssue(category models.IssueCategory) *models.Issue {
	now := time.Now()
	return &models.Issue{
		Title:       "test issue",
		Description: "test description",
		Category:    category,
		Status:      models.StatusReported,
		ReportedBy:  primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInsertAssignsID(t *testing.T) {
	st := New()
	issue := newIssue(models.Pothole)
	require.NoError(t, st.InsertIssue(context.Background(), issue))
	assert.False(t, issue.ID.IsZero())
	assert.NotNil(t, issue.Upvoters)
}

func TestGetIssueReturnsCopy(t *testing.T) {
	st := New()
	issue := newIssue(models.Pothole)
	issue.Location = models.NewGeoPoint(77.59, 12.97)
	require.NoError(t, st.InsertIssue(context.Background(), issue))

	got, err := st.GetIssue(context.Background(), issue.ID)
	require.NoError(t, err)

	// Mutating the returned record must not leak into the store.
	got.Location.Coordinates[0] = 0
	got.Upvoters = append(got.Upvoters, primitive.NewObjectID())

	again, err := st.GetIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 77.59, again.Location.Coordinates[0])
	assert.Empty(t, again.Upvoters)
}

func TestToggleUpvoteConsistency(t *testing.T) {
	st := New()
	issue := newIssue(models.Garbage)
	require.NoError(t, st.InsertIssue(context.Background(), issue))

	const voters = 64
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updated, err := st.ToggleUpvote(context.Background(), issue.ID, primitive.NewObjectID())
			assert.NoError(t, err)
			assert.Equal(t, len(updated.Upvoters), updated.UpvoteCount)
		}()
	}
	wg.Wait()

	got, err := st.GetIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.UpvoteCount)
	assert.Equal(t, len(got.Upvoters), got.UpvoteCount)
}

func TestFindDuringMutationsStaysConsistent(t *testing.T) {
	st := New()
	issue := newIssue(models.Pothole)
	issue.Location = models.NewGeoPoint(77.5946, 12.9716)
	require.NoError(t, st.InsertIssue(context.Background(), issue))

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			voter := primitive.NewObjectID()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, err := st.ToggleUpvote(context.Background(), issue.ID, voter)
				assert.NoError(t, err)
				_, err = st.UpdateStatus(context.Background(), issue.ID, models.StatusAcknowledged)
				assert.NoError(t, err)
			}
		}()
	}

	// Every snapshot a list path hands out must be internally consistent,
	// however the toggles interleave.
	for i := 0; i < 200; i++ {
		listed, err := st.FindIssues(context.Background(), store.IssueFilter{})
		require.NoError(t, err)
		for _, got := range listed {
			assert.Equal(t, len(got.Upvoters), got.UpvoteCount)
		}

		nearby, err := st.FindNearby(context.Background(), 77.5946, 12.9716, 1000, 10)
		require.NoError(t, err)
		for _, got := range nearby {
			assert.Equal(t, len(got.Upvoters), got.UpvoteCount)
		}
	}

	close(done)
	wg.Wait()
}

func TestInsertCommentRequiresLiveIssue(t *testing.T) {
	st := New()
	issue := newIssue(models.WaterLeakage)
	require.NoError(t, st.InsertIssue(context.Background(), issue))
	require.NoError(t, st.DeleteCascade(context.Background(), issue.ID))

	comment := &models.Comment{
		Text:      "too late",
		Author:    primitive.NewObjectID(),
		Issue:     issue.ID,
		CreatedAt: time.Now(),
	}
	assert.True(t, apperrors.IsNotFound(st.InsertComment(context.Background(), comment)))

	comments, err := st.ListComments(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDeleteCascadeAtomicity(t *testing.T) {
	st := New()
	issue := newIssue(models.Streetlight)
	require.NoError(t, st.InsertIssue(context.Background(), issue))
	for i := 0; i < 3; i++ {
		comment := &models.Comment{
			Text:      "c",
			Author:    primitive.NewObjectID(),
			Issue:     issue.ID,
			CreatedAt: time.Now(),
		}
		require.NoError(t, st.InsertComment(context.Background(), comment))
	}

	require.NoError(t, st.DeleteCascade(context.Background(), issue.ID))

	_, err := st.GetIssue(context.Background(), issue.ID)
	assert.True(t, apperrors.IsNotFound(err))

	comments, err := st.ListComments(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// Mutations against the dead record must report NotFound.
	_, err = st.ToggleUpvote(context.Background(), issue.ID, primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))
	_, err = st.UpdateStatus(context.Background(), issue.ID, models.StatusResolved)
	assert.True(t, apperrors.IsNotFound(err))

	assert.True(t, apperrors.IsNotFound(st.DeleteCascade(context.Background(), issue.ID)))
}

func TestFindIssuesFilter(t *testing.T) {
	st := New()
	categories := []models.IssueCategory{models.Pothole, models.Garbage, models.Pothole}
	for _, cat := range categories {
		require.NoError(t, st.InsertIssue(context.Background(), newIssue(cat)))
		time.Sleep(2 * time.Millisecond)
	}

	cat := models.Pothole
	matched, err := st.FindIssues(context.Background(), store.IssueFilter{Category: &cat})
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	all, err := st.FindIssues(context.Background(), store.IssueFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
	}
}

func TestFindNearbyOrdering(t *testing.T) {
	st := New()
	points := []struct {
		title  string
		coords []float64
	}{
		{"close", []float64{77.6050, 12.9800}},
		{"center", []float64{77.5946, 12.9716}},
		{"faraway", []float64{72.8777, 19.0760}},
	}
	for _, p := range points {
		issue := newIssue(models.Pothole)
		issue.Title = p.title
		issue.Location = models.NewGeoPoint(p.coords[0], p.coords[1])
		require.NoError(t, st.InsertIssue(context.Background(), issue))
	}

	nearby, err := st.FindNearby(context.Background(), 77.5946, 12.9716, 10000, 10)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, "center", nearby[0].Title)
	assert.Equal(t, "close", nearby[1].Title)

	one, err := st.FindNearby(context.Background(), 77.5946, 12.9716, 10000, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "center", one[0].Title)
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	st := New()
	user := &models.User{Name: "A", Email: "a@example.com", Role: models.RoleCitizen}
	require.NoError(t, st.InsertUser(context.Background(), user))

	dup := &models.User{Name: "B", Email: "a@example.com", Role: models.RoleCitizen}
	assert.True(t, apperrors.IsConflict(st.InsertUser(context.Background(), dup)))

	found, err := st.FindUserByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = st.FindUserByID(context.Background(), primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))
}
