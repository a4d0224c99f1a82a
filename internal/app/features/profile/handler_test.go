package profile_test

import (
	"testing"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	"github.com/roomiehq/roomies/internal/app/features/profile"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.uber.org/zap"
)

const sessionKey = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T) (*profile.Handler, *userstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	sm, err := auth.NewSessionManager(sessionKey, "roomies-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := profile.NewHandler(users, sm, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, users, testutil.NewFixtures(t, db)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Theme: u.Theme}
}

func TestServe_ReturnsProfile(t *testing.T) {
	h, _, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Alice Smith", "alice@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/profile", asTestUser(u))
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, "alice@test.com")
	rec.AssertContains(t, `"group_id":null`)
}

func TestHandleTheme_Persists(t *testing.T) {
	h, users, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Alice", "alice@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/profile/theme", `{"theme":"dark"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleTheme(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, `"theme":"dark"`)
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("theme change should refresh the session cookie")
	}

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("stored theme: got %q, want dark", got.Theme)
	}
}

func TestHandleTheme_RejectsUnknownTheme(t *testing.T) {
	h, users, f := newHandler(t)
	ctx := testutil.TestContext(t)

	u := f.CreateUser(ctx, "Alice", "alice@test.com")

	req := testutil.NewAuthenticatedJSONRequest("POST", "/profile/theme", `{"theme":"neon"}`, asTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleTheme(rec, req)

	rec.AssertStatus(t, 422)

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Theme != "light" {
		t.Errorf("rejected theme should not persist, got %q", got.Theme)
	}
}

func TestHandleTheme_RequiresSignIn(t *testing.T) {
	h, _, _ := newHandler(t)

	req := testutil.NewJSONRequest("POST", "/profile/theme", `{"theme":"dark"}`)
	rec := testutil.NewRecorder()
	h.HandleTheme(rec, req)

	rec.AssertStatus(t, 401)
}
