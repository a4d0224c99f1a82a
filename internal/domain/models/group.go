package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a roommate household (pod). The document ID is a human-readable
// slug of the group name plus a random numeric suffix, e.g. "beach-house-4821".
//
// Membership is keyed by user ObjectID; member emails are display data
// resolved from the users collection at read time.
type Group struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`

	// InviteCode is the shareable join code. Stored lowercase; matching is
	// case-insensitive. A unique index enforces global uniqueness.
	InviteCode string `bson:"invite_code" json:"invite_code"`

	Members []primitive.ObjectID `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
