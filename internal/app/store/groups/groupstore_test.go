package groupstore_test

import (
	"testing"

	groupstore "github.com/roomiehq/roomies/internal/app/store/groups"
	"github.com/roomiehq/roomies/internal/app/system/indexes"
	"github.com/roomiehq/roomies/internal/domain/models"
	"github.com/roomiehq/roomies/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInsert_LowercasesInviteCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := groupstore.New(db)

	g, err := store.Insert(ctx, models.Group{
		ID:         "the-flat-1234",
		Name:       "The Flat",
		InviteCode: "The-Flat-9876",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if g.InviteCode != "the-flat-9876" {
		t.Errorf("invite code: got %q, want %q", g.InviteCode, "the-flat-9876")
	}
	if g.Members == nil {
		t.Error("members should be initialized, got nil")
	}
}

func TestInsert_DuplicateInviteCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := groupstore.New(db)

	_, err := store.Insert(ctx, models.Group{ID: "a-1111", Name: "A", InviteCode: "shared-code-1"})
	if err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	_, err = store.Insert(ctx, models.Group{ID: "b-2222", Name: "B", InviteCode: "SHARED-code-1"})
	if err != groupstore.ErrDuplicate {
		t.Errorf("second Insert: got %v, want ErrDuplicate", err)
	}
}

func TestGetByInviteCode_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := groupstore.New(db)
	f := testutil.NewFixtures(t, db)

	f.CreateGroup(ctx, "casa-5678", "Casa", "casa-5678")

	g, err := store.GetByInviteCode(ctx, "  CASA-5678 ")
	if err != nil {
		t.Fatalf("GetByInviteCode: %v", err)
	}
	if g.ID != "casa-5678" {
		t.Errorf("got group %q, want %q", g.ID, "casa-5678")
	}

	if _, err := store.GetByInviteCode(ctx, "no-such-code"); err != groupstore.ErrNotFound {
		t.Errorf("unknown code: got %v, want ErrNotFound", err)
	}
}

func TestAddMember_IdempotentAndRemovable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := groupstore.New(db)
	f := testutil.NewFixtures(t, db)

	f.CreateGroup(ctx, "loft-1111", "Loft", "loft-1111")
	userID := primitive.NewObjectID()

	if err := store.AddMember(ctx, "loft-1111", userID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// Second add is a no-op, not a duplicate entry.
	if err := store.AddMember(ctx, "loft-1111", userID); err != nil {
		t.Fatalf("second AddMember: %v", err)
	}

	g, err := store.GetByID(ctx, "loft-1111")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(g.Members) != 1 || g.Members[0] != userID {
		t.Fatalf("members: got %v, want exactly [%s]", g.Members, userID.Hex())
	}

	ok, err := store.HasMember(ctx, "loft-1111", userID)
	if err != nil || !ok {
		t.Fatalf("HasMember: got (%v, %v), want (true, nil)", ok, err)
	}

	if err := store.RemoveMember(ctx, "loft-1111", userID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	ok, err = store.HasMember(ctx, "loft-1111", userID)
	if err != nil || ok {
		t.Fatalf("HasMember after remove: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestAddMember_UnknownGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := groupstore.New(db)

	err := store.AddMember(ctx, "nope-0000", primitive.NewObjectID())
	if err != groupstore.ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
