// Package sync keeps local mirrors of group-scoped collections in step with
// the store. A Subscription watches one collection for one group and, on
// every remote change, re-reads the full collection and delivers it as an
// authoritative snapshot. There is no incremental diffing and no ordering
// guarantee beyond delivery order.
//
// Change streams need a replica set; on standalone deployments the watch
// fails with a recognizable error and the subscription falls back to
// interval polling. Either way the contract is the same: full snapshots,
// Stop() unconditionally ends delivery.
package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/roomiehq/roomies/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultPollInterval is the snapshot refresh cadence when change streams
// are unavailable.
const DefaultPollInterval = 2 * time.Second

// streamIdleWait separates TryNext attempts when the change stream has no
// buffered events.
const streamIdleWait = 250 * time.Millisecond

// Subscription is a live watch on one group-scoped collection. Ownership
// belongs to whichever handler started it; that owner must call Stop when
// it is done (normally via defer), after which no further snapshots are
// delivered.
type Subscription[T any] struct {
	id      string
	coll    *mongo.Collection
	groupID string

	fetch      func(ctx context.Context) ([]T, error)
	onSnapshot func([]T)

	pollInterval time.Duration
	log          *zap.Logger

	stopOnce gosync.Once
	stopped  chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
}

// New builds a subscription on coll scoped to groupID. fetch re-reads the
// full scoped collection; onSnapshot receives every delivered snapshot.
func New[T any](coll *mongo.Collection, groupID string, fetch func(ctx context.Context) ([]T, error), onSnapshot func([]T), logger *zap.Logger) *Subscription[T] {
	return &Subscription[T]{
		id:           uuid.NewString(),
		coll:         coll,
		groupID:      groupID,
		fetch:        fetch,
		onSnapshot:   onSnapshot,
		pollInterval: DefaultPollInterval,
		log:          logger,
		stopped:      make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// SetPollInterval overrides the fallback poll cadence. Tests use a short
// interval.
func (s *Subscription[T]) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.pollInterval = d
	}
}

// ID identifies the subscription in logs.
func (s *Subscription[T]) ID() string { return s.id }

// Start delivers an initial snapshot synchronously, then watches for changes
// in a goroutine until Stop is called or ctx ends. The synchronous first
// snapshot means a caller that Starts then renders sees current state
// immediately rather than waiting for the first remote change.
func (s *Subscription[T]) Start(ctx context.Context) error {
	docs, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.deliver(docs)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(runCtx)
	return nil
}

// Stop ends delivery. Idempotent; safe to call from any goroutine. After
// Stop returns no further onSnapshot calls are made. Stop cancels the watch
// context so a blocked driver call returns immediately.
func (s *Subscription[T]) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.cancel != nil {
			s.cancel()
		}
	})
	<-s.done
}

func (s *Subscription[T]) run(ctx context.Context) {
	defer close(s.done)

	stream, err := s.watch(ctx)
	if err != nil {
		if !txn.IsNotSupported(err) {
			s.log.Warn("change stream unavailable; falling back to polling",
				zap.String("subscription", s.id), zap.Error(err))
		}
		s.poll(ctx)
		return
	}
	defer stream.Close(context.Background())

	s.log.Debug("change stream open",
		zap.String("subscription", s.id),
		zap.String("group_id", s.groupID))

	// TryNext reports an empty batch as a plain false without latching a
	// stream error, so a quiet interval cannot poison the stream. Stop
	// cancels ctx, which unblocks an in-flight TryNext.
	for {
		if stream.TryNext(ctx) {
			s.refresh(ctx)
			continue
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() == nil {
				s.log.Warn("change stream error; falling back to polling",
					zap.String("subscription", s.id), zap.Error(err))
				s.poll(ctx)
			}
			return
		}

		select {
		case <-s.stopped:
			return
		case <-ctx.Done():
			return
		case <-time.After(streamIdleWait):
		}
	}
}

func (s *Subscription[T]) watch(ctx context.Context) (*mongo.ChangeStream, error) {
	// Match only events for this group; deletes carry no fullDocument, so
	// the filter passes them through and refresh re-reads the scoped list.
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.group_id": s.groupID},
			bson.M{"operationType": "delete"},
		}}}},
	}
	return s.coll.Watch(ctx, pipeline)
}

func (s *Subscription[T]) poll(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopped:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Subscription[T]) refresh(ctx context.Context) {
	docs, err := s.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("snapshot fetch failed",
				zap.String("subscription", s.id), zap.Error(err))
		}
		return
	}
	s.deliver(docs)
}

func (s *Subscription[T]) deliver(docs []T) {
	select {
	case <-s.stopped:
		return
	default:
	}
	s.onSnapshot(docs)
}
