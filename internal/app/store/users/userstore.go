package userstore

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

// ErrDuplicateEmail is returned when creating a user with an email that
// already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleSub looks up a user by Google account subject.
func (s *Store) GetByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_sub": sub}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user record with a nil group pointer after
// normalizing name and email.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.GroupID = nil

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// LinkGoogleSub stores the Google account subject on an existing user.
func (s *Store) LinkGoogleSub(ctx context.Context, id primitive.ObjectID, sub string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_sub": sub,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SetGroup merges the group pointer onto the user record.
func (s *Store) SetGroup(ctx context.Context, id primitive.ObjectID, groupID string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"group_id":   groupID,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ClearGroup nulls the group pointer.
func (s *Store) ClearGroup(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"group_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// SetTheme stores the display preference ("light" or "dark").
func (s *Store) SetTheme(ctx context.Context, id primitive.ObjectID, theme string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"theme":      theme,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// EmailsForIDs resolves member ids to emails, one record at a time, skipping
// ids that no longer resolve. Order follows ids.
func (s *Store) EmailsForIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error) {
	emails := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := s.GetByID(ctx, id)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}
