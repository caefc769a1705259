package services

import (
	"strings"
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
)

func (s *ServiceTestSuite) TestToggleLikeIsSelfInverting() {
	owner := s.user("alice", false)
	other := s.user("carol", false)
	liker := s.user("bob", false)
	post := s.post(owner, time.Now())

	_, err := s.engagement.ToggleLike(s.ctx, other.ID, post.ID)
	s.Require().NoError(err)

	first, err := s.engagement.ToggleLike(s.ctx, liker.ID, post.ID)
	s.Require().NoError(err)
	s.True(first.Liked)
	s.EqualValues(2, first.LikesCount)

	second, err := s.engagement.ToggleLike(s.ctx, liker.ID, post.ID)
	s.Require().NoError(err)
	s.False(second.Liked)
	s.EqualValues(1, second.LikesCount)
}

func (s *ServiceTestSuite) TestToggleLikeUnknownPost() {
	liker := s.user("bob", false)
	_, err := s.engagement.ToggleLike(s.ctx, liker.ID, "no-such-post")
	s.assertKind(err, apperrors.KindNotFound)
	s.Zero(s.count(&models.Like{}))
}

func (s *ServiceTestSuite) TestToggleLikeNotifiesOwnerOnlyForOthers() {
	owner := s.user("alice", false)
	liker := s.user("bob", false)
	post := s.post(owner, time.Now())

	_, err := s.engagement.ToggleLike(s.ctx, owner.ID, post.ID)
	s.Require().NoError(err)
	s.Zero(s.count(&models.Notification{}))

	_, err = s.engagement.ToggleLike(s.ctx, liker.ID, post.ID)
	s.Require().NoError(err)
	s.EqualValues(1, s.count(&models.Notification{}))
}

func (s *ServiceTestSuite) TestToggleCommentLike() {
	owner := s.user("alice", false)
	liker := s.user("bob", false)
	post := s.post(owner, time.Now())
	res, err := s.engagement.AddComment(s.ctx, owner.ID, post.ID, "nice")
	s.Require().NoError(err)

	liked, err := s.engagement.ToggleCommentLike(s.ctx, liker.ID, res.Comment.ID)
	s.Require().NoError(err)
	s.True(liked.Liked)
	s.EqualValues(1, liked.LikesCount)

	unliked, err := s.engagement.ToggleCommentLike(s.ctx, liker.ID, res.Comment.ID)
	s.Require().NoError(err)
	s.False(unliked.Liked)
	s.Zero(unliked.LikesCount)

	_, err = s.engagement.ToggleCommentLike(s.ctx, liker.ID, 4242)
	s.assertKind(err, apperrors.KindNotFound)
}

func (s *ServiceTestSuite) TestEmptyCommentIsRejected() {
	owner := s.user("alice", false)
	post := s.post(owner, time.Now())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.engagement.AddComment(s.ctx, owner.ID, post.ID, text)
		s.assertKind(err, apperrors.KindValidation)
	}
	s.Zero(s.count(&models.Comment{}))
}

func (s *ServiceTestSuite) TestCommentTooLong() {
	owner := s.user("alice", false)
	post := s.post(owner, time.Now())

	_, err := s.engagement.AddComment(s.ctx, owner.ID, post.ID, strings.Repeat("x", MaxCommentLength+1))
	s.assertKind(err, apperrors.KindValidation)
}

func (s *ServiceTestSuite) TestAddComment() {
	owner := s.user("alice", false)
	commenter := s.user("bob", false)
	post := s.post(owner, time.Now())

	res, err := s.engagement.AddComment(s.ctx, commenter.ID, post.ID, "  first!  ")
	s.Require().NoError(err)
	s.Equal("first!", res.Comment.Text)
	s.Equal("bob", res.Username)
	s.EqualValues(1, res.CommentsCount)
	s.NotZero(res.Comment.ID)

	var n models.Notification
	s.Require().NoError(s.db.Where("recipient_id = ?", owner.ID).First(&n).Error)
	s.Equal(models.NotificationComment, n.Type)
	s.Equal(post.ID, n.TargetID)

	_, err = s.engagement.AddComment(s.ctx, commenter.ID, "missing", "hello")
	s.assertKind(err, apperrors.KindNotFound)
}
