package services

import (
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
)

func (s *ServiceTestSuite) TestPublicProfileIsViewableByAnyone() {
	owner := s.user("alice", false)
	s.post(owner, time.Now())
	stranger := s.user("bob", false)

	for _, viewer := range []uint{owner.ID, stranger.ID} {
		profile, err := s.profiles.GetProfile(s.ctx, viewer, "alice")
		s.Require().NoError(err)
		s.False(profile.Restricted)
		s.Len(profile.Posts, 1)
		s.Require().NotNil(profile.Stats)
		s.EqualValues(1, profile.Stats.PostsCount)
	}
}

func (s *ServiceTestSuite) TestPrivateProfileRestrictedUntilApproved() {
	owner := s.user("alice", true)
	s.post(owner, time.Now())
	viewer := s.user("bob", false)

	profile, err := s.profiles.GetProfile(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	s.True(profile.Restricted)
	s.True(profile.User.IsPrivate)
	s.False(profile.IsPending)
	s.Nil(profile.Posts)
	s.Nil(profile.Stats)

	state, err := s.follows.Follow(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	s.Equal(FollowPending, state)

	profile, err = s.profiles.GetProfile(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	s.True(profile.Restricted)
	s.True(profile.IsPending)

	var follow models.Follow
	s.Require().NoError(s.db.Where("follower_id = ?", viewer.ID).First(&follow).Error)
	_, err = s.follows.Approve(s.ctx, owner.ID, follow.ID)
	s.Require().NoError(err)

	profile, err = s.profiles.GetProfile(s.ctx, viewer.ID, "alice")
	s.Require().NoError(err)
	s.False(profile.Restricted)
	s.True(profile.IsFollowing)
	s.Len(profile.Posts, 1)
	s.EqualValues(1, profile.Stats.FollowersCount)
}

func (s *ServiceTestSuite) TestOwnerSeesOwnPrivateProfile() {
	owner := s.user("alice", true)
	profile, err := s.profiles.GetProfile(s.ctx, owner.ID, "alice")
	s.Require().NoError(err)
	s.False(profile.Restricted)
	s.True(profile.IsOwner)
	s.NotNil(profile.Posts)
}

func (s *ServiceTestSuite) TestProfileUnknownUser() {
	viewer := s.user("bob", false)
	_, err := s.profiles.GetProfile(s.ctx, viewer.ID, "ghost")
	s.assertKind(err, apperrors.KindNotFound)
}

func (s *ServiceTestSuite) TestProfileStatsCountEveryPost() {
	owner := s.user("alice", false)
	s.post(owner, time.Now())
	s.Require().NoError(s.db.Create(&models.Post{UserID: owner.ID, Caption: "text only", CreatedAt: time.Now()}).Error)

	profile, err := s.profiles.GetProfile(s.ctx, owner.ID, "alice")
	s.Require().NoError(err)
	s.Len(profile.Posts, 1)
	s.EqualValues(2, profile.Stats.PostsCount)
}
