package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with no group.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  fullName,
		Email:     email,
		Theme:     "light",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUserInGroup inserts a test user whose group pointer is set.
func (f *Fixtures) CreateUserInGroup(ctx context.Context, fullName, email, groupID string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, email)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]any{"$set": map[string]any{"group_id": groupID}}); err != nil {
		f.t.Fatalf("failed to set test user group: %v", err)
	}
	u.GroupID = &groupID
	return u
}

// CreateGroup inserts a test group with the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, id, name, inviteCode string, members ...primitive.ObjectID) models.Group {
	f.t.Helper()

	if members == nil {
		members = []primitive.ObjectID{}
	}
	group := models.Group{
		ID:         id,
		Name:       name,
		InviteCode: inviteCode,
		Members:    members,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateChore inserts a test chore.
func (f *Fixtures) CreateChore(ctx context.Context, groupID, text string, completed bool) models.Chore {
	f.t.Helper()

	chore := models.Chore{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Text:      text,
		Completed: completed,
		CreatedBy: models.Creator{ID: primitive.NewObjectID(), Email: "fixture@test.com", Name: "Fixture"},
		Assignees: []string{},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("chores").InsertOne(ctx, chore); err != nil {
		f.t.Fatalf("failed to create test chore: %v", err)
	}
	return chore
}

// CreateEvent inserts a test event with a native datetime date.
func (f *Fixtures) CreateEvent(ctx context.Context, groupID, title string, date time.Time) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Title:     title,
		Date:      date.UTC(),
		Display:   date.Format(models.EventDisplayLayout),
		CreatedBy: models.Creator{ID: primitive.NewObjectID(), Email: "fixture@test.com", Name: "Fixture"},
		Attendees: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateLegacyEvent inserts an event whose date field is stored as an ISO
// string, the shape older documents carry.
func (f *Fixtures) CreateLegacyEvent(ctx context.Context, groupID, title, isoDate string) primitive.ObjectID {
	f.t.Helper()

	id := primitive.NewObjectID()
	doc := map[string]any{
		"_id":        id,
		"group_id":   groupID,
		"title":      title,
		"date":       isoDate,
		"display":    "",
		"created_by": models.Creator{ID: primitive.NewObjectID(), Email: "fixture@test.com", Name: "Fixture"},
		"attendees":  []string{},
		"created_at": time.Now().UTC(),
		"updated_at": time.Now().UTC(),
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create legacy test event: %v", err)
	}
	return id
}
