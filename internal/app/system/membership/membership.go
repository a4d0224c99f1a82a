// Package membership maps an authenticated identity to its active group:
// resolving the group pointer, creating groups, joining by invite code, and
// leaving. It owns the one retry loop in the system: the join-group
// confirmation poll that tolerates read-after-write propagation lag.
package membership

import (
	"context"
	"errors"
	"time"

	groupstore "github.com/roomiehq/roomies/internal/app/store/groups"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/slug"
	"github.com/roomiehq/roomies/internal/app/system/txn"
	"github.com/roomiehq/roomies/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNoGroup means the user has no active group and should be routed to
	// group setup.
	ErrNoGroup = errors.New("user has no group")

	// ErrGroupNotFound means no group matched the invite code. No writes
	// have been performed.
	ErrGroupNotFound = errors.New("group not found")

	// ErrJoinTimeout means the membership write was issued but the read-back
	// never confirmed it within the retry bound.
	ErrJoinTimeout = errors.New("timed out waiting for group membership to confirm")
)

const (
	// Join confirmation poll: bounded retry with fixed backoff.
	joinAttempts = 15
	joinInterval = 400 * time.Millisecond

	// Regeneration bound for slug-id / invite-code collisions on create.
	createAttempts = 5
)

// Resolution is the outcome of resolving a user's active group.
type Resolution struct {
	User         *models.User
	Group        *models.Group
	MemberEmails []string
}

// Service implements membership resolution over the user and group stores.
type Service struct {
	users  *userstore.Store
	groups *groupstore.Store
	log    *zap.Logger

	// overridable in tests
	joinAttempts int
	joinInterval time.Duration

	runTxn func(ctx context.Context, fn func(ctx context.Context) error) error
}

// New builds a membership Service. db is needed for the transaction wrapper
// around paired group/user writes.
func New(users *userstore.Store, groups *groupstore.Store, db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		users:        users,
		groups:       groups,
		log:          logger,
		joinAttempts: joinAttempts,
		joinInterval: joinInterval,
		runTxn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.Run(ctx, db, logger, fn)
		},
	}
}

// Resolve loads the user record and follows its group pointer.
//
// A nil pointer yields ErrNoGroup. A dangling pointer (the referenced group
// no longer exists) is repaired by clearing the pointer, then also yields
// ErrNoGroup. Member emails are looked up one record at a time from the
// member id list.
func (s *Service) Resolve(ctx context.Context, userID primitive.ObjectID) (*Resolution, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.GroupID == nil {
		return nil, ErrNoGroup
	}

	group, err := s.groups.GetByID(ctx, *user.GroupID)
	if err == groupstore.ErrNotFound {
		s.log.Warn("dangling group pointer; clearing",
			zap.String("user_id", userID.Hex()),
			zap.String("group_id", *user.GroupID))
		if clearErr := s.users.ClearGroup(ctx, userID); clearErr != nil {
			s.log.Error("clearing dangling group pointer failed", zap.Error(clearErr))
		}
		return nil, ErrNoGroup
	}
	if err != nil {
		return nil, err
	}

	emails, err := s.users.EmailsForIDs(ctx, group.Members)
	if err != nil {
		return nil, err
	}

	return &Resolution{User: user, Group: group, MemberEmails: emails}, nil
}

// CreateGroup creates a group named name with the creator as sole member and
// merges the group pointer onto the creator's user record. The group id and
// invite code are independently slugged with random suffixes; collisions on
// the unique indexes trigger regeneration up to a small bound.
func (s *Service) CreateGroup(ctx context.Context, user *models.User, name string) (*models.Group, error) {
	// Each attempt gets its own transaction: a duplicate-key error aborts
	// the transaction it happened in, so regeneration must not continue
	// inside the aborted one.
	var lastErr error
	for i := 0; i < createAttempts; i++ {
		g := models.Group{
			ID:         slug.WithSuffix(name),
			Name:       name,
			InviteCode: slug.WithSuffix(name),
			Members:    []primitive.ObjectID{user.ID},
		}

		var created models.Group
		lastErr = s.runTxn(ctx, func(ctx context.Context) error {
			var err error
			created, err = s.groups.Insert(ctx, g)
			if err != nil {
				return err
			}
			return s.users.SetGroup(ctx, user.ID, created.ID)
		})
		if lastErr == nil {
			s.log.Info("group created",
				zap.String("group_id", created.ID),
				zap.String("creator_id", user.ID.Hex()))
			return &created, nil
		}
		if lastErr != groupstore.ErrDuplicate {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// JoinGroup matches code case-insensitively against stored invite codes,
// appends the caller to the matched group's member list, polls until the
// read-back confirms membership, then sets the caller's group pointer.
//
// The membership write and its visibility to subsequent reads are not
// atomic on the hosted store, hence the bounded poll instead of an assumed
// immediate read-after-write.
func (s *Service) JoinGroup(ctx context.Context, user *models.User, code string) (*models.Group, error) {
	group, err := s.groups.GetByInviteCode(ctx, code)
	if err == groupstore.ErrNotFound {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.groups.AddMember(ctx, group.ID, user.ID); err != nil {
		return nil, err
	}

	confirmed := false
	for i := 0; i < s.joinAttempts; i++ {
		ok, err := s.groups.HasMember(ctx, group.ID, user.ID)
		if err == nil && ok {
			confirmed = true
			break
		}
		if err != nil {
			s.log.Warn("join confirmation read failed; retrying", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.joinInterval):
		}
	}
	if !confirmed {
		return nil, ErrJoinTimeout
	}

	if err := s.users.SetGroup(ctx, user.ID, group.ID); err != nil {
		return nil, err
	}

	s.log.Info("user joined group",
		zap.String("group_id", group.ID),
		zap.String("user_id", user.ID.Hex()))
	return group, nil
}

// LeaveGroup removes the caller from their group's member list and clears
// the group pointer. Both writes run inside the transaction wrapper so a
// partial leave is only possible on deployments without transaction support.
func (s *Service) LeaveGroup(ctx context.Context, user *models.User) error {
	if user.GroupID == nil {
		return ErrNoGroup
	}
	groupID := *user.GroupID

	err := s.runTxn(ctx, func(ctx context.Context) error {
		if err := s.groups.RemoveMember(ctx, groupID, user.ID); err != nil && err != groupstore.ErrNotFound {
			return err
		}
		return s.users.ClearGroup(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("user left group",
		zap.String("group_id", groupID),
		zap.String("user_id", user.ID.Hex()))
	return nil
}

// SetJoinPolicy overrides the join confirmation poll bounds. Tests use this
// to avoid multi-second waits.
func (s *Service) SetJoinPolicy(attempts int, interval time.Duration) {
	if attempts > 0 {
		s.joinAttempts = attempts
	}
	if interval > 0 {
		s.joinInterval = interval
	}
}
