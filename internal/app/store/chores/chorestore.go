package chorestore

import (
	"context"
	"errors"
	"time"

	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no chore matches the id within the group.
	ErrNotFound = errors.New("chore not found")

	// ErrNotCompleted is returned when deleting a chore that is not marked
	// completed. Deletion is only permitted once completed=true.
	ErrNotCompleted = errors.New("only completed chores can be deleted")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chores")}
}

// Collection exposes the underlying collection for change-stream watches.
func (s *Store) Collection() *mongo.Collection { return s.c }

// ListByGroup returns the full chore list for a group, oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.Chore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	chores := []models.Chore{}
	if err := cur.All(ctx, &chores); err != nil {
		return nil, err
	}
	return chores, nil
}

// Add inserts a new chore with completed=false.
func (s *Store) Add(ctx context.Context, groupID, text string, creator models.Creator, assignees []string) (models.Chore, error) {
	ch := models.Chore{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Text:      text,
		Completed: false,
		CreatedBy: creator,
		Assignees: assignees,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		return models.Chore{}, err
	}
	return ch, nil
}

// Toggle flips the completed flag and returns the new value.
func (s *Store) Toggle(ctx context.Context, groupID string, id primitive.ObjectID) (bool, error) {
	// Two-step read-then-write: last write wins under concurrent toggles,
	// matching the store's overall consistency model.
	var ch models.Chore
	filter := bson.M{"_id": id, "group_id": groupID}
	if err := s.c.FindOne(ctx, filter).Decode(&ch); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, ErrNotFound
		}
		return false, err
	}

	next := !ch.Completed
	if _, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"completed": next}}); err != nil {
		return false, err
	}
	return next, nil
}

// Delete removes a chore, but only when it is completed.
func (s *Store) Delete(ctx context.Context, groupID string, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "group_id": groupID}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "group_id": groupID, "completed": true})
	if err != nil {
		return err
	}
	if res.DeletedCount == 1 {
		return nil
	}

	// Nothing deleted: distinguish missing from not-yet-completed.
	n, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrNotCompleted
}
