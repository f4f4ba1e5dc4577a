package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole      IssueCategory = "Pothole"
	Streetlight  IssueCategory = "Streetlight"
	Garbage      IssueCategory = "Garbage"
	WaterLeakage IssueCategory = "Water Leakage"
	Other        IssueCategory = "Other"
)

// Valid reports whether c is one of the known categories.
func (c IssueCategory) Valid() bool {
	switch c {
	case Pothole, Streetlight, Garbage, WaterLeakage, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	StatusReported     IssueStatus = "Reported"
	StatusAcknowledged IssueStatus = "Acknowledged"
	StatusInProgress   IssueStatus = "In Progress"
	StatusResolved     IssueStatus = "Resolved"
)

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusReported, StatusAcknowledged, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// GeoPoint is a GeoJSON Point. Coordinates are [longitude, latitude],
// both always present and finite.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON Point from a longitude/latitude pair.
func NewGeoPoint(lon, lat float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Category    IssueCategory        `bson:"category" json:"category"`
	Location    *GeoPoint            `bson:"location,omitempty" json:"location,omitempty"`
	Address     string               `bson:"address,omitempty" json:"address,omitempty"`
	ImageURL    *string              `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status      IssueStatus          `bson:"status" json:"status"`
	ReportedBy  primitive.ObjectID   `bson:"reportedBy" json:"reportedBy"`
	Upvoters    []primitive.ObjectID `bson:"upvoters" json:"upvoters"`
	UpvoteCount int                  `bson:"upvoteCount" json:"upvoteCount"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasUpvoted reports whether the given account currently upvotes the issue.
func (i *Issue) HasUpvoted(account primitive.ObjectID) bool {
	for _, v := range i.Upvoters {
		if v == account {
			return true
		}
	}
	return false
}
