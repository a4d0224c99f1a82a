package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/roomiehq/roomies/internal/app/system/normalize"
	"github.com/roomiehq/roomies/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicate is returned when the generated group id or invite code
	// collides with an existing group. Callers regenerate and retry.
	ErrDuplicate = errors.New("group id or invite code already in use")

	// ErrNotFound is returned when no group matches.
	ErrNotFound = errors.New("group not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// GetByID loads a group by its slug id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetByInviteCode finds the group with the given invite code. Codes are
// stored lowercase, so normalizing the input makes the match
// case-insensitive and exact.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"invite_code": normalize.Code(code)}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Insert writes a new group document. The caller supplies the slug id and
// invite code; the invite code is stored lowercase. A duplicate id or invite
// code yields ErrDuplicate.
func (s *Store) Insert(ctx context.Context, g models.Group) (models.Group, error) {
	g.InviteCode = normalize.Code(g.InviteCode)
	g.CreatedAt = time.Now().UTC()
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicate
		}
		return models.Group{}, err
	}
	return g, nil
}

// AddMember appends a user id to the member list (idempotent).
func (s *Store) AddMember(ctx context.Context, groupID string, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{"$addToSet": bson.M{"members": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMember removes a user id from the member list.
func (s *Store) RemoveMember(ctx context.Context, groupID string, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{"$pull": bson.M{"members": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// HasMember re-reads the group and reports whether userID is in its member
// list. Used by the join-group confirmation poll.
func (s *Store) HasMember(ctx context.Context, groupID string, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": groupID, "members": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
