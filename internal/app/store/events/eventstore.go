package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no event matches the id within the group.
var ErrNotFound = errors.New("event not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Collection exposes the underlying collection for change-stream watches.
func (s *Store) Collection() *mongo.Collection { return s.c }

// rawEvent mirrors models.Event but leaves the date undecoded so both stored
// representations (native datetime and legacy ISO string) can be normalized.
type rawEvent struct {
	ID        primitive.ObjectID `bson:"_id"`
	GroupID   string             `bson:"group_id"`
	Title     string             `bson:"title"`
	Date      bson.RawValue      `bson:"date"`
	Display   string             `bson:"display"`
	CreatedBy models.Creator     `bson:"created_by"`
	Attendees []string           `bson:"attendees"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// decodeDate normalizes the two date representations found in stored events.
// Anything else is a malformed document and is rejected here, at the read
// boundary, rather than passed on to render.
func decodeDate(rv bson.RawValue) (time.Time, error) {
	switch rv.Type {
	case bsontype.DateTime:
		return rv.Time().UTC(), nil
	case bsontype.String:
		s := rv.StringValue()
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05.000Z07:00", s); err == nil {
			return t.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("event date string %q is not ISO-8601", s)
	default:
		return time.Time{}, fmt.Errorf("event date has unsupported BSON type %s", rv.Type)
	}
}

func (re rawEvent) toEvent() (models.Event, error) {
	date, err := decodeDate(re.Date)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", re.ID.Hex(), err)
	}
	return models.Event{
		ID:        re.ID,
		GroupID:   re.GroupID,
		Title:     re.Title,
		Date:      date,
		Display:   re.Display,
		CreatedBy: re.CreatedBy,
		Attendees: re.Attendees,
		CreatedAt: re.CreatedAt,
		UpdatedAt: re.UpdatedAt,
	}, nil
}

// ListByGroup returns all events for a group sorted by date ascending.
func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raws []rawEvent
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(raws))
	for _, re := range raws {
		ev, err := re.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	// Sort in memory: a stored-field sort would order string dates and
	// native datetimes inconsistently.
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// Add inserts a new event. The date is written as a native datetime and the
// display string is precomputed from it.
func (s *Store) Add(ctx context.Context, groupID, title string, date time.Time, creator models.Creator, attendees []string) (models.Event, error) {
	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Title:     title,
		Date:      date.UTC(),
		Display:   date.Format(models.EventDisplayLayout),
		CreatedBy: creator,
		Attendees: attendees,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// Overwrite replaces the four mutable fields (title, date, display,
// attendees) in full. There are no partial-field update semantics.
func (s *Store) Overwrite(ctx context.Context, groupID string, id primitive.ObjectID, title string, date time.Time, attendees []string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "group_id": groupID},
		bson.M{"$set": bson.M{
			"title":      title,
			"date":       date.UTC(),
			"display":    date.Format(models.EventDisplayLayout),
			"attendees":  attendees,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event unconditionally.
func (s *Store) Delete(ctx context.Context, groupID string, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "group_id": groupID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DayKey returns the calendar-date bucket key for an event date, in UTC,
// formatted YYYY-MM-DD. Events stored as ISO strings and native timestamps
// that fall on the same calendar day share a key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GroupByDay buckets events under their DayKey and returns the keys sorted
// ascending alongside the buckets.
func GroupByDay(events []models.Event) ([]string, map[string][]models.Event) {
	buckets := make(map[string][]models.Event)
	for _, ev := range events {
		k := DayKey(ev.Date)
		buckets[k] = append(buckets[k], ev)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, buckets
}
