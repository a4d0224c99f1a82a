package groupsetup_test

import (
	"testing"
	"time"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	"github.com/roomiehq/roomies/internal/app/features/groupsetup"
	groupstore "github.com/roomiehq/roomies/internal/app/store/groups"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*groupsetup.Handler, *userstore.Store, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	ms := membership.New(users, groupstore.New(db), db, zap.NewNop())
	ms.SetJoinPolicy(3, 10*time.Millisecond)
	h := groupsetup.NewHandler(users, ms, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, users, db, testutil.NewFixtures(t, db)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Theme: u.Theme}
}

func TestHandleCreate_Succeeds(t *testing.T) {
	h, users, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Founder", "founder@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups", `{"name":"Maple House"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, 201)
	rec.AssertContains(t, "invite_code")
	rec.AssertContains(t, "Maple House")

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.GroupID == nil {
		t.Error("creator's group pointer should be set after create")
	}
}

func TestHandleCreate_EmptyName(t *testing.T) {
	h, _, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Founder", "founder@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups", `{"name":"   "}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, 422)
}

func TestHandleJoin_UnknownCodeWritesNothing(t *testing.T) {
	h, users, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Lost", "lost@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups/join", `{"code":"no-such-code"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleJoin(rec, req)

	rec.AssertStatus(t, 404)
	rec.AssertContains(t, "Group not found")

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("failed join set the pointer to %v", *got.GroupID)
	}
}

func TestHandleJoin_Succeeds(t *testing.T) {
	h, users, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	f.CreateGroup(ctx, "birch-1111", "Birch House", "birch-code-1111")
	u := f.CreateUser(ctx, "Joiner", "joiner@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/groups/join", `{"code":"BIRCH-code-1111"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleJoin(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, "birch-1111")

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.GroupID == nil || *got.GroupID != "birch-1111" {
		t.Errorf("joiner pointer: got %v, want birch-1111", got.GroupID)
	}
}

func TestHandleLeave_NotInGroup(t *testing.T) {
	h, _, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Solo", "solo@test.com")

	req := testutil.NewAuthenticatedRequest("POST", "/groups/leave", asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleLeave(rec, req)

	rec.AssertStatus(t, 409)
	rec.AssertContains(t, "You are not in a group.")
}

func TestHandleLeave_Succeeds(t *testing.T) {
	h, users, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUserInGroup(ctx, "Leaver", "leaver@test.com", "oak-1111")
	f.CreateGroup(ctx, "oak-1111", "Oak House", "oak-code-1111", u.ID)

	req := testutil.NewAuthenticatedRequest("POST", "/groups/leave", asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleLeave(rec, req)

	rec.AssertStatus(t, 200)

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("pointer after leave: got %v, want nil", *got.GroupID)
	}
}
