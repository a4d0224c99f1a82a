package calendar

import (
	"encoding/json"
	"testing"
	"time"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	eventstore "github.com/roomiehq/roomies/internal/app/store/events"
	groupstore "github.com/roomiehq/roomies/internal/app/store/groups"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Tests live in the package so they can pin h.now for the past-date check.

func newTestHandler(t *testing.T) (*Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := membership.New(userstore.New(db), groupstore.New(db), db, zap.NewNop())
	h := NewHandler(eventstore.New(db), ms, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, db, testutil.NewFixtures(t, db)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Theme: u.Theme}
}

func TestHandleAdd_PastDateWritesNothing(t *testing.T) {
	h, db, f := newTestHandler(t)
	ctx := testutil.TestContext(t)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar",
		`{"title":"BBQ","date":"2026-05-31T18:00:00Z"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)

	rec.AssertStatus(t, 422)
	rec.AssertContains(t, "Event date must be in the future.")

	n, err := db.Collection("events").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if n != 0 {
		t.Errorf("rejected add wrote %d events, want 0", n)
	}
}

func TestHandleAdd_FutureDateCreates(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar",
		`{"title":"BBQ","date":"2026-06-02T18:00:00Z"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)

	rec.AssertStatus(t, 201)
	rec.AssertContains(t, "BBQ")
	rec.AssertContains(t, "Jun 2, 2026 6:00 PM")
}

func TestHandleAdd_CreatorIsDefaultAttendee(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar",
		`{"title":"BBQ","date":"2026-06-02T18:00:00Z"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)

	rec.AssertStatus(t, 201)

	var ev models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(ev.Attendees) != 1 || ev.Attendees[0] != "alice@test.com" {
		t.Errorf("attendees: got %v, want the creator by default", ev.Attendees)
	}
}

func TestHandleAdd_CreatorNotDuplicatedInAttendees(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar",
		`{"title":"BBQ","date":"2026-06-02T18:00:00Z","attendees":["alice@test.com","bob@test.com"]}`,
		asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)

	rec.AssertStatus(t, 201)

	var ev models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(ev.Attendees) != 2 || ev.Attendees[0] != "alice@test.com" || ev.Attendees[1] != "bob@test.com" {
		t.Errorf("attendees: got %v, want [alice@test.com bob@test.com]", ev.Attendees)
	}
}

func TestHandleAdd_MissingTitle(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar",
		`{"title":"  ","date":"2099-06-02T18:00:00Z"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)

	rec.AssertStatus(t, 422)
	rec.AssertContains(t, "Please enter an event title.")
}

func TestHandleList_BucketsByDay(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	f.CreateEvent(ctx, "house-1111", "brunch", time.Date(2026, 10, 1, 11, 0, 0, 0, time.UTC))
	f.CreateEvent(ctx, "house-1111", "movie", time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC))
	f.CreateEvent(ctx, "house-1111", "cleanup", time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC))

	req := testutil.NewAuthenticatedRequest("GET", "/calendar", asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleList(rec, req)

	rec.AssertStatus(t, 200)

	var days []dayBucket
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d day buckets, want 2", len(days))
	}
	if days[0].Day != "2026-10-01" || len(days[0].Events) != 2 {
		t.Errorf("first bucket: %s with %d events, want 2026-10-01 with 2", days[0].Day, len(days[0].Events))
	}
	if days[1].Day != "2026-10-02" || len(days[1].Events) != 1 {
		t.Errorf("second bucket: %s with %d events, want 2026-10-02 with 1", days[1].Day, len(days[1].Events))
	}
}

func TestHandleEdit_PastEventStaysEditable(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)
	h.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)
	ev := f.CreateEvent(ctx, "house-1111", "Garden party", time.Date(2026, 5, 30, 18, 0, 0, 0, time.UTC))

	// Fixing the title of an event whose date already passed keeps the date.
	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar/"+ev.ID.Hex()+"/edit",
		`{"title":"Garden party (rained out)","date":"2026-05-30T18:00:00Z"}`, asTestUser(u))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleEdit(rec, req)

	rec.AssertStatus(t, 200)

	events, err := h.Events.ListByGroup(ctx, "house-1111")
	if err != nil {
		t.Fatalf("ListByGroup: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Garden party (rained out)" {
		t.Errorf("edit of past event did not persist: %+v", events)
	}
	if !events[0].Date.Equal(time.Date(2026, 5, 30, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("date changed: got %v", events[0].Date)
	}
}

func TestHandleEdit_UnknownEvent(t *testing.T) {
	h, _, f := newTestHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUserInGroup(ctx, "Alice", "alice@test.com", "house-1111")
	f.CreateGroup(ctx, "house-1111", "House", "house-code-1111", u.ID)

	req := testutil.NewAuthenticatedJSONRequest("POST", "/calendar/ffffffffffffffffffffffff/edit",
		`{"title":"Moved","date":"2099-06-02T18:00:00Z"}`, asTestUser(u))
	req = testutil.WithChiURLParam(req, "id", "ffffffffffffffffffffffff")
	rec := testutil.NewRecorder()
	h.HandleEdit(rec, req)

	rec.AssertStatus(t, 404)
	rec.AssertContains(t, "Event not found")
}
