package services

import (
	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
)

func (s *ServiceTestSuite) TestPrivateFollowCycleIsRepeatable() {
	owner := s.user("alice", true)
	follower := s.user("bob", false)

	for round := 0; round < 2; round++ {
		state, err := s.follows.Follow(s.ctx, follower.ID, "alice")
		s.Require().NoError(err)
		s.Equal(FollowPending, state)

		// Following again while pending changes nothing.
		state, err = s.follows.Follow(s.ctx, follower.ID, "alice")
		s.Require().NoError(err)
		s.Equal(FollowPending, state)
		s.EqualValues(1, s.count(&models.Follow{}))

		requests, err := s.follows.PendingRequests(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Require().Len(requests, 1)
		s.Equal("bob", requests[0].Requester.Username)

		follow, err := s.follows.Approve(s.ctx, owner.ID, requests[0].ID)
		s.Require().NoError(err)
		s.True(follow.IsApproved)

		state, err = s.follows.Follow(s.ctx, follower.ID, "alice")
		s.Require().NoError(err)
		s.Equal(FollowApproved, state)

		state, err = s.follows.Unfollow(s.ctx, follower.ID, "alice")
		s.Require().NoError(err)
		s.Equal(FollowAbsent, state)
		s.Zero(s.count(&models.Follow{}))
	}
}

func (s *ServiceTestSuite) TestFollowPublicIsApprovedImmediately() {
	s.user("alice", false)
	follower := s.user("bob", false)

	state, err := s.follows.Follow(s.ctx, follower.ID, "alice")
	s.Require().NoError(err)
	s.Equal(FollowApproved, state)
}

func (s *ServiceTestSuite) TestToggleCreatesThenDeletes() {
	s.user("alice", true)
	follower := s.user("bob", false)

	state, err := s.follows.Toggle(s.ctx, follower.ID, "alice")
	s.Require().NoError(err)
	s.Equal(FollowPending, state)

	state, err = s.follows.Toggle(s.ctx, follower.ID, "alice")
	s.Require().NoError(err)
	s.Equal(FollowAbsent, state)
	s.Zero(s.count(&models.Follow{}))
}

func (s *ServiceTestSuite) TestSelfFollowIsRejected() {
	alice := s.user("alice", false)

	_, err := s.follows.Follow(s.ctx, alice.ID, "alice")
	s.assertKind(err, apperrors.KindValidation)
	_, err = s.follows.Toggle(s.ctx, alice.ID, "alice")
	s.assertKind(err, apperrors.KindValidation)
	s.Zero(s.count(&models.Follow{}))
}

func (s *ServiceTestSuite) TestUnfollowWhenAbsentIsNoop() {
	s.user("alice", false)
	bob := s.user("bob", false)

	state, err := s.follows.Unfollow(s.ctx, bob.ID, "alice")
	s.Require().NoError(err)
	s.Equal(FollowAbsent, state)
}

func (s *ServiceTestSuite) TestOnlyTargetCanApproveOrReject() {
	owner := s.user("alice", true)
	follower := s.user("bob", false)
	other := s.user("carol", false)

	_, err := s.follows.Follow(s.ctx, follower.ID, "alice")
	s.Require().NoError(err)
	requests, err := s.follows.PendingRequests(s.ctx, owner.ID)
	s.Require().NoError(err)
	id := requests[0].ID

	_, err = s.follows.Approve(s.ctx, other.ID, id)
	s.assertKind(err, apperrors.KindNotFound)
	s.assertKind(s.follows.Reject(s.ctx, other.ID, id), apperrors.KindNotFound)
	_, err = s.follows.Approve(s.ctx, owner.ID, 999)
	s.assertKind(err, apperrors.KindNotFound)

	s.Require().NoError(s.follows.Reject(s.ctx, owner.ID, id))
	s.Zero(s.count(&models.Follow{}))
}

func (s *ServiceTestSuite) TestFollowNotifications() {
	public := s.user("alice", false)
	private := s.user("carol", true)
	bob := s.user("bob", false)

	_, err := s.follows.Follow(s.ctx, bob.ID, "alice")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, bob.ID, "carol")
	s.Require().NoError(err)

	var toPublic, toPrivate models.Notification
	s.Require().NoError(s.db.Where("recipient_id = ?", public.ID).First(&toPublic).Error)
	s.Equal(models.NotificationFollow, toPublic.Type)
	s.Require().NoError(s.db.Where("recipient_id = ?", private.ID).First(&toPrivate).Error)
	s.Equal(models.NotificationFollowRequest, toPrivate.Type)
}

func (s *ServiceTestSuite) TestFollowerListsFlagViewerEdges() {
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	carol := s.user("carol", true)
	viewer := s.user("viewer", false)

	for _, u := range []*models.User{bob, carol} {
		_, err := s.follows.Follow(s.ctx, u.ID, "alice")
		s.Require().NoError(err)
	}
	_, err := s.follows.Follow(s.ctx, viewer.ID, "bob")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, viewer.ID, "carol")
	s.Require().NoError(err)

	followers, err := s.follows.Followers(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	s.Require().Len(followers, 2)
	byName := map[string]FollowUser{}
	for _, f := range followers {
		byName[f.Username] = f
	}
	s.True(byName["bob"].IsFollowedByMe)
	s.False(byName["bob"].IsPending)
	s.False(byName["carol"].IsFollowedByMe)
	s.True(byName["carol"].IsPending)

	following, err := s.follows.Following(s.ctx, viewer.ID, "bob")
	s.Require().NoError(err)
	s.Require().Len(following, 1)
	s.Equal(alice.ID, following[0].ID)
}
