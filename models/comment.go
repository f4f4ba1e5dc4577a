package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents one remark attached to an issue. A comment belongs to
// exactly one issue for its entire lifetime.
type Comment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text             string             `bson:"text" json:"text"`
	Author           primitive.ObjectID `bson:"author" json:"author"`
	Issue            primitive.ObjectID `bson:"issue" json:"issue"`
	IsOfficialUpdate bool               `bson:"isOfficialUpdate" json:"isOfficialUpdate"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
