package login_test

import (
	"testing"

	uierrors "github.com/roomiehq/roomies/internal/app/features/errors"
	"github.com/roomiehq/roomies/internal/app/features/login"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionKey = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T) (*login.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	sm, err := auth.NewSessionManager(sessionKey, "roomies-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return login.NewHandler(users, sm, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop()), users
}

func createAccount(t *testing.T, users *userstore.Store, email, password string) models.User {
	t.Helper()
	ctx := testutil.TestContext(t)

	hash := ""
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hash = string(b)
	}
	u, err := users.Create(ctx, models.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: hash,
		Theme:        "light",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return u
}

func TestHandleLogin_Succeeds(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "alice@test.com", "correct horse battery")

	req := testutil.NewJSONRequest("POST", "/login",
		`{"email":"ALICE@test.com","password":"correct horse battery"}`)
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, "alice@test.com")
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("successful login should set the session cookie")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "alice@test.com", "correct horse battery")

	req := testutil.NewJSONRequest("POST", "/login",
		`{"email":"alice@test.com","password":"wrong"}`)
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)

	rec.AssertStatus(t, 401)
	rec.AssertContains(t, "Invalid email or password.")
}

func TestHandleLogin_UnknownEmail(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewJSONRequest("POST", "/login",
		`{"email":"nobody@test.com","password":"whatever"}`)
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)

	// Same message as a wrong password, so account existence is not leaked.
	rec.AssertStatus(t, 401)
	rec.AssertContains(t, "Invalid email or password.")
}

func TestHandleLogin_GoogleOnlyAccount(t *testing.T) {
	h, users := newHandler(t)
	createAccount(t, users, "google@test.com", "")

	req := testutil.NewJSONRequest("POST", "/login",
		`{"email":"google@test.com","password":"anything at all"}`)
	rec := testutil.NewRecorder()
	h.HandleLogin(rec, req)

	rec.AssertStatus(t, 401)
	rec.AssertContains(t, "Invalid email or password.")
}
