package services

import (
	"bytes"
	"image"
	"image/png"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/storage"
)

func (s *ServiceTestSuite) TestCreatePostRequiresMedia() {
	alice := s.user("alice", false)
	_, err := s.postSvc.CreatePost(s.ctx, alice.ID, CreatePostInput{Caption: "no media"})
	s.assertKind(err, apperrors.KindValidation)
	s.Zero(s.count(&models.Post{}))
}

func (s *ServiceTestSuite) TestCreatePostKeepsImageWhenBothGiven() {
	alice := s.user("alice", false)
	post, err := s.postSvc.CreatePost(s.ctx, alice.ID, CreatePostInput{
		Caption:  "both",
		ImageURL: "https://cdn.test/a.jpg",
		VideoURL: "https://cdn.test/a.mp4",
	})
	s.Require().NoError(err)
	s.Equal("https://cdn.test/a.jpg", post.ImageURL)
	s.Empty(post.VideoURL)

	stored, err := s.posts.GetPostByID(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(post.ImageURL, stored.ImageURL)
}

func (s *ServiceTestSuite) TestCreatePostUploadsImage() {
	alice := s.user("alice", false)
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	post, err := s.postSvc.CreatePost(s.ctx, alice.ID, CreatePostInput{
		Image: &storage.Upload{Filename: "x.png", Data: buf.Bytes()},
		Video: &storage.Upload{Filename: "y.mp4", Data: []byte("ignored")},
	})
	s.Require().NoError(err)
	s.Equal("https://cdn.test/posts/file.png", post.ImageURL)
	s.Empty(post.VideoURL)
}

func (s *ServiceTestSuite) TestCreatePostRejectsMismatchedUpload() {
	alice := s.user("alice", false)
	_, err := s.postSvc.CreatePost(s.ctx, alice.ID, CreatePostInput{
		Video: &storage.Upload{Filename: "x.mp4", Data: []byte("plain text")},
	})
	s.assertKind(err, apperrors.KindValidation)
}

func (s *ServiceTestSuite) TestNotificationService() {
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	_, err := s.follows.Follow(s.ctx, bob.ID, "alice")
	s.Require().NoError(err)

	page, err := s.notes.List(s.ctx, alice.ID, 0, 0)
	s.Require().NoError(err)
	s.Equal(1, page.Page)
	s.Equal(20, page.Limit)
	s.Require().Len(page.Notifications, 1)
	s.Equal("bob started following you", page.Notifications[0].Message)
	s.Equal("bob", page.Notifications[0].Actor.Username)

	unread, err := s.notes.UnreadCount(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.EqualValues(1, unread)

	s.assertKind(s.notes.MarkRead(s.ctx, bob.ID, page.Notifications[0].ID), apperrors.KindNotFound)
	s.Require().NoError(s.notes.MarkRead(s.ctx, alice.ID, page.Notifications[0].ID))
	s.Require().NoError(s.notes.MarkAllRead(s.ctx, alice.ID))

	unread, err = s.notes.UnreadCount(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Zero(unread)

	groups, err := s.notes.Grouped(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(groups.Today, 1)
}
