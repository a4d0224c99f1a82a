package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Creator is the snapshot of the user who created a chore or event, denormalized
// onto the record so clients can render attribution without extra lookups.
type Creator struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
}

// Chore is a single task on a group's shared chore list.
type Chore struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	GroupID   string             `bson:"group_id" json:"group_id"`
	Text      string             `bson:"text" json:"text"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedBy Creator            `bson:"created_by" json:"created_by"`

	// Assignees are member emails. May be empty (unassigned).
	Assignees []string `bson:"assignees,omitempty" json:"assignees,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
