package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/golang/geo/s2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/apperrors"
	"civicreport-be/models"
	"civicreport-be/store"
)

const earthRadiusMeters = 6371010.0

func (s *Store) InsertIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.Upvoters == nil {
		issue.Upvoters = []primitive.ObjectID{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.issues[issue.ID] = &issueRecord{seq: s.seq, issue: cloneIssue(*issue)}
	return nil
}

func (s *Store) FindIssues(ctx context.Context, filter store.IssueFilter) ([]models.Issue, error) {
	s.mu.RLock()
	type entry struct {
		seq   uint64
		issue models.Issue
	}
	entries := make([]entry, 0, len(s.issues))
	for _, rec := range s.issues {
		// Record fields are only stable under rec.mu; status and the upvote
		// pair mutate without the map lock.
		rec.mu.Lock()
		if rec.deleted ||
			(filter.Status != nil && rec.issue.Status != *filter.Status) ||
			(filter.Category != nil && rec.issue.Category != *filter.Category) {
			rec.mu.Unlock()
			continue
		}
		entries = append(entries, entry{seq: rec.seq, issue: cloneIssue(rec.issue)})
		rec.mu.Unlock()
	}
	s.mu.RUnlock()

	// Newest first; insertion order breaks createdAt ties.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].issue.CreatedAt.Equal(entries[j].issue.CreatedAt) {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].issue.CreatedAt.After(entries[j].issue.CreatedAt)
	})

	issues := make([]models.Issue, 0, len(entries))
	for _, e := range entries {
		issues = append(issues, e.issue)
	}
	return issues, nil
}

func (s *Store) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.RLock()
	rec, ok := s.issues[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("issue")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, apperrors.NotFound("issue")
	}
	issue := cloneIssue(rec.issue)
	return &issue, nil
}

func (s *Store) FindNearby(ctx context.Context, lon, lat, maxMeters float64, limit int64) ([]models.Issue, error) {
	origin := s2.LatLngFromDegrees(lat, lon)

	s.mu.RLock()
	type entry struct {
		meters float64
		issue  models.Issue
	}
	var entries []entry
	for _, rec := range s.issues {
		rec.mu.Lock()
		loc := rec.issue.Location
		if rec.deleted || loc == nil || len(loc.Coordinates) != 2 {
			rec.mu.Unlock()
			continue
		}
		point := s2.LatLngFromDegrees(loc.Coordinates[1], loc.Coordinates[0])
		meters := origin.Distance(point).Radians() * earthRadiusMeters
		if meters <= maxMeters {
			entries = append(entries, entry{meters: meters, issue: cloneIssue(rec.issue)})
		}
		rec.mu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].meters < entries[j].meters })
	if limit > 0 && int64(len(entries)) > limit {
		entries = entries[:limit]
	}

	issues := make([]models.Issue, 0, len(entries))
	for _, e := range entries {
		issues = append(issues, e.issue)
	}
	return issues, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	s.mu.RLock()
	rec, ok := s.issues[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("issue")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, apperrors.NotFound("issue")
	}
	rec.issue.Status = status
	rec.issue.UpdatedAt = time.Now()
	issue := cloneIssue(rec.issue)
	return &issue, nil
}

func (s *Store) ToggleUpvote(ctx context.Context, id, voter primitive.ObjectID) (*models.Issue, error) {
	s.mu.RLock()
	rec, ok := s.issues[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("issue")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, apperrors.NotFound("issue")
	}

	voters := rec.issue.Upvoters
	removed := false
	for i, v := range voters {
		if v == voter {
			voters = append(voters[:i], voters[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		voters = append(voters, voter)
	}
	rec.issue.Upvoters = voters
	rec.issue.UpvoteCount = len(voters)

	issue := cloneIssue(rec.issue)
	return &issue, nil
}

func (s *Store) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.issues[id]
	if !ok {
		return apperrors.NotFound("issue")
	}

	// Mark the record dead under its own lock so an in-flight mutation that
	// already resolved the pointer fails with NotFound instead of writing
	// to an unreachable record.
	rec.mu.Lock()
	rec.deleted = true
	rec.mu.Unlock()

	delete(s.issues, id)
	delete(s.comments, id)
	return nil
}
