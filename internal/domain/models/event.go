package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a single entry on a group's shared calendar.
//
// Date is written as a native BSON datetime. Older documents stored the date
// as an ISO-8601 string; the event store normalizes both representations at
// the read boundary, so this struct always carries a real time.Time.
type Event struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	GroupID string             `bson:"group_id" json:"group_id"`
	Title   string             `bson:"title" json:"title"`
	Date    time.Time          `bson:"date" json:"date"`

	// Display is the precomputed human-readable rendering of Date,
	// e.g. "Jan 2, 2006 3:04 PM".
	Display string `bson:"display" json:"display"`

	CreatedBy Creator `bson:"created_by" json:"created_by"`

	// Attendees are emails. The creator is always included; freeform invitees
	// who are not group members are allowed.
	Attendees []string `bson:"attendees" json:"attendees"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EventDisplayLayout is the time layout used for Event.Display.
const EventDisplayLayout = "Jan 2, 2006 3:04 PM"
