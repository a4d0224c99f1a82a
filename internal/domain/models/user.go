package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the per-identity profile record.
//
// GroupID is the group membership pointer: nil means the user has not joined
// or created a pod yet and should be routed to group setup. When non-nil it
// references a Group document whose Members list contains this user's ID.
type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"` // lowercase, unique

	// PasswordHash is empty for users who only sign in with Google.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	// GoogleSub is the Google account subject for OAuth sign-ins.
	GoogleSub string `bson:"google_sub,omitempty" json:"-"`

	GroupID *string `bson:"group_id,omitempty" json:"group_id,omitempty"`

	// Theme is the display preference ("light", "dark", or "" for system).
	Theme string `bson:"theme,omitempty" json:"theme,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
