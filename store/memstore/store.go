// Package memstore is an in-memory store used by the test suite and by dev
// runs without a MongoDB. Record fields are guarded by a per-record mutex,
// held for every read or write of the record, so concurrent work on
// different issues never contends; the map-level lock covers lookup,
// iteration, insert and remove.
package memstore

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/models"
)

type issueRecord struct {
	mu      sync.Mutex
	seq     uint64
	deleted bool
	issue   models.Issue
}

type Store struct {
	mu       sync.RWMutex
	seq      uint64
	issues   map[primitive.ObjectID]*issueRecord
	comments map[primitive.ObjectID][]models.Comment
	users    map[primitive.ObjectID]models.User
	emails   map[string]primitive.ObjectID
}

func New() *Store {
	return &Store{
		issues:   make(map[primitive.ObjectID]*issueRecord),
		comments: make(map[primitive.ObjectID][]models.Comment),
		users:    make(map[primitive.ObjectID]models.User),
		emails:   make(map[string]primitive.ObjectID),
	}
}

func cloneIssue(issue models.Issue) models.Issue {
	out := issue
	out.Upvoters = append([]primitive.ObjectID(nil), issue.Upvoters...)
	if out.Upvoters == nil {
		out.Upvoters = []primitive.ObjectID{}
	}
	if issue.Location != nil {
		loc := *issue.Location
		loc.Coordinates = append([]float64(nil), issue.Location.Coordinates...)
		out.Location = &loc
	}
	return out
}
