package userstore_test

import (
	"testing"

	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/indexes"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_NormalizesAndRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	u, err := store.Create(ctx, models.User{
		FullName: "  Alice   Smith ",
		Email:    " Alice@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email: got %q, want %q", u.Email, "alice@example.com")
	}
	if u.FullName != "Alice Smith" {
		t.Errorf("full name: got %q, want %q", u.FullName, "Alice Smith")
	}
	if u.GroupID != nil {
		t.Errorf("new user should have no group, got %v", *u.GroupID)
	}

	// Same email with different casing must collide on the unique index.
	_, err = store.Create(ctx, models.User{FullName: "Other", Email: "ALICE@example.com"})
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("duplicate create: got %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	created := f.CreateUser(ctx, "Bob Jones", "bob@example.com")

	u, err := store.GetByEmail(ctx, "BOB@Example.Com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("got user %s, want %s", u.ID.Hex(), created.ID.Hex())
	}
}

func TestSetAndClearGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	u := f.CreateUser(ctx, "Carol", "carol@example.com")

	if err := store.SetGroup(ctx, u.ID, "my-place-1234"); err != nil {
		t.Fatalf("SetGroup: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.GroupID == nil || *got.GroupID != "my-place-1234" {
		t.Fatalf("group pointer not set: %v", got.GroupID)
	}

	if err := store.ClearGroup(ctx, u.ID); err != nil {
		t.Fatalf("ClearGroup: %v", err)
	}
	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID after clear: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("group pointer should be nil after clear, got %v", *got.GroupID)
	}
}

func TestEmailsForIDs_SkipsMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	a := f.CreateUser(ctx, "A", "a@example.com")
	b := f.CreateUser(ctx, "B", "b@example.com")
	missing := primitive.NewObjectID()

	emails, err := store.EmailsForIDs(ctx, []primitive.ObjectID{a.ID, missing, b.ID})
	if err != nil {
		t.Fatalf("EmailsForIDs: %v", err)
	}
	if len(emails) != 2 || emails[0] != "a@example.com" || emails[1] != "b@example.com" {
		t.Errorf("emails: got %v, want [a@example.com b@example.com]", emails)
	}
}

func TestSetTheme(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	u := f.CreateUser(ctx, "Dana", "dana@example.com")
	if err := store.SetTheme(ctx, u.ID, "dark"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("theme: got %q, want %q", got.Theme, "dark")
	}
}
