package services

import (
	"context"
	"strconv"
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FollowState is the state of one directed (follower, target) pair.
type FollowState string

const (
	FollowAbsent   FollowState = "absent"
	FollowPending  FollowState = "pending"
	FollowApproved FollowState = "approved"
)

func stateOf(f *models.Follow) FollowState {
	if f == nil {
		return FollowAbsent
	}
	if f.IsApproved {
		return FollowApproved
	}
	return FollowPending
}

// FollowRequest is a pending incoming request with its requester.
type FollowRequest struct {
	ID        uint               `json:"id"`
	Requester models.UserCompact `json:"requester"`
	CreatedAt time.Time          `json:"created_at"`
}

// FollowUser is an entry in a followers or following list, flagged with the
// viewer's own edge toward that user.
type FollowUser struct {
	models.UserCompact
	IsFollowedByMe bool `json:"is_followed_by_me"`
	IsPending      bool `json:"is_pending"`
}

type FollowService struct {
	store   *repositories.Store
	metrics *metrics.Metrics
}

func NewFollowService(store *repositories.Store, m *metrics.Metrics) *FollowService {
	return &FollowService{store: store, metrics: m}
}

// Follow moves absent to pending (private target) or approved (public
// target). An existing edge is left alone and its state returned.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (FollowState, error) {
	target, err := s.target(ctx, followerID, username)
	if err != nil {
		return FollowAbsent, err
	}

	var state FollowState
	var created bool
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		existing, err := tx.Follows.GetFollow(ctx, followerID, target.ID)
		if err == nil {
			state = stateOf(existing)
			return nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		state, created, err = createFollow(ctx, tx, followerID, target)
		return err
	})
	if err != nil {
		return FollowAbsent, err
	}

	if created {
		s.afterCreate(ctx, followerID, target, state)
	}
	return state, nil
}

// Unfollow removes the edge in any state. It is a no-op when absent.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (FollowState, error) {
	target, err := userByUsername(ctx, s.store.Users, username)
	if err != nil {
		return FollowAbsent, err
	}

	var deleted bool
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		deleted, err = tx.Follows.DeleteFollow(ctx, followerID, target.ID)
		return err
	})
	if err != nil {
		return FollowAbsent, err
	}
	if deleted {
		s.transition(followerID, target.ID, FollowAbsent)
	}
	return FollowAbsent, nil
}

// Toggle deletes an existing edge or creates a new one.
func (s *FollowService) Toggle(ctx context.Context, followerID uint, username string) (FollowState, error) {
	target, err := s.target(ctx, followerID, username)
	if err != nil {
		return FollowAbsent, err
	}

	state := FollowAbsent
	var created bool
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		deleted, err := tx.Follows.DeleteFollow(ctx, followerID, target.ID)
		if err != nil || deleted {
			return err
		}
		state, created, err = createFollow(ctx, tx, followerID, target)
		return err
	})
	if err != nil {
		return FollowAbsent, err
	}

	if created {
		s.afterCreate(ctx, followerID, target, state)
	} else if state == FollowAbsent {
		s.transition(followerID, target.ID, FollowAbsent)
	}
	return state, nil
}

// Approve moves a pending request addressed to ownerID to approved.
func (s *FollowService) Approve(ctx context.Context, ownerID, followID uint) (*models.Follow, error) {
	var follow *models.Follow
	var changed bool
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		follow, err = incomingFollow(ctx, tx, ownerID, followID)
		if err != nil || follow.IsApproved {
			return err
		}
		if err := tx.Follows.ApproveFollow(ctx, follow.ID); err != nil {
			return err
		}
		follow.IsApproved = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.transition(follow.FollowerID, ownerID, FollowApproved)
		if owner, err := s.store.Users.GetUserByID(ctx, ownerID); err == nil {
			notify(ctx, s.store.Notifications, notificationFor(
				models.NotificationFollowApproved, owner, follow.FollowerID, strconv.FormatUint(uint64(follow.ID), 10), "follow"))
		}
	}
	return follow, nil
}

// Reject deletes a request addressed to ownerID, pending or approved.
func (s *FollowService) Reject(ctx context.Context, ownerID, followID uint) error {
	var follow *models.Follow
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		follow, err = incomingFollow(ctx, tx, ownerID, followID)
		if err != nil {
			return err
		}
		return tx.Follows.DeleteFollowByID(ctx, follow.ID)
	})
	if err != nil {
		return err
	}
	s.transition(follow.FollowerID, ownerID, FollowAbsent)
	return nil
}

func (s *FollowService) PendingRequests(ctx context.Context, ownerID uint) ([]FollowRequest, error) {
	pending, err := s.store.Follows.GetPendingRequests(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(pending))
	for i := range pending {
		ids[i] = pending[i].FollowerID
	}
	users, err := s.store.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	requesters := compactUsers(users)

	requests := make([]FollowRequest, 0, len(pending))
	for _, f := range pending {
		requests = append(requests, FollowRequest{
			ID:        f.ID,
			Requester: requesters[f.FollowerID],
			CreatedAt: f.CreatedAt,
		})
	}
	return requests, nil
}

// Followers lists users with an approved edge to username.
func (s *FollowService) Followers(ctx context.Context, viewerID uint, username string) ([]FollowUser, error) {
	user, err := userByUsername(ctx, s.store.Users, username)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Follows.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.flagForViewer(ctx, viewerID, users)
}

// Following lists users username follows with approval.
func (s *FollowService) Following(ctx context.Context, viewerID uint, username string) ([]FollowUser, error) {
	user, err := userByUsername(ctx, s.store.Users, username)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Follows.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.flagForViewer(ctx, viewerID, users)
}

func (s *FollowService) flagForViewer(ctx context.Context, viewerID uint, users []models.User) ([]FollowUser, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	states, err := s.store.Follows.GetFollowStates(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]FollowUser, 0, len(users))
	for i := range users {
		approved, ok := states[users[i].ID]
		out = append(out, FollowUser{
			UserCompact:    users[i].ToCompact(),
			IsFollowedByMe: ok && approved,
			IsPending:      ok && !approved,
		})
	}
	return out, nil
}

// target resolves username and rejects following oneself.
func (s *FollowService) target(ctx context.Context, followerID uint, username string) (*models.User, error) {
	target, err := userByUsername(ctx, s.store.Users, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, apperrors.Validation("username", "you cannot follow yourself")
	}
	return target, nil
}

// createFollow inserts the edge. If a concurrent request inserted it first
// the unique index wins and the stored state is returned instead.
func createFollow(ctx context.Context, tx *repositories.Store, followerID uint, target *models.User) (FollowState, bool, error) {
	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: target.ID,
		IsApproved:  !target.IsPrivate,
	}
	created, err := tx.Follows.CreateFollow(ctx, follow)
	if err != nil {
		return FollowAbsent, false, err
	}
	if created {
		return stateOf(follow), true, nil
	}
	existing, err := tx.Follows.GetFollow(ctx, followerID, target.ID)
	if err != nil {
		return FollowAbsent, false, err
	}
	return stateOf(existing), false, nil
}

// incomingFollow loads followID and checks it is addressed to ownerID.
// Foreign ids are reported as missing.
func incomingFollow(ctx context.Context, tx *repositories.Store, ownerID, followID uint) (*models.Follow, error) {
	follow, err := tx.Follows.GetFollowByID(ctx, followID)
	if err != nil {
		return nil, notFoundAs(err, "follow request")
	}
	if follow.FollowingID != ownerID {
		return nil, apperrors.NotFound("follow request")
	}
	return follow, nil
}

func (s *FollowService) afterCreate(ctx context.Context, followerID uint, target *models.User, state FollowState) {
	s.transition(followerID, target.ID, state)

	follower, err := s.store.Users.GetUserByID(ctx, followerID)
	if err != nil {
		return
	}
	kind := models.NotificationFollow
	if state == FollowPending {
		kind = models.NotificationFollowRequest
	}
	notify(ctx, s.store.Notifications, notificationFor(kind, follower, target.ID, follower.Username, "user"))
}

func (s *FollowService) transition(followerID, targetID uint, state FollowState) {
	s.metrics.RecordFollowTransition(string(state))
	logger.Log.Debug("Follow state changed",
		zap.Uint("follower_id", followerID),
		zap.Uint("target_id", targetID),
		zap.String("state", string(state)),
	)
}
