package services

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"go.uber.org/zap"
)

const MaxCommentLength = 500

// ToggleResult is the state after a like toggle.
type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type CommentResult struct {
	Comment       models.Comment `json:"comment"`
	Username      string         `json:"username"`
	CommentsCount int64          `json:"comments_count"`
}

type EngagementService struct {
	store   *repositories.Store
	posts   repositories.PostRepository
	metrics *metrics.Metrics
}

func NewEngagementService(store *repositories.Store, posts repositories.PostRepository, m *metrics.Metrics) *EngagementService {
	return &EngagementService{store: store, posts: posts, metrics: m}
}

// ToggleLike removes the user's like on postID if present and adds it
// otherwise. Applying it twice restores the original state and count.
func (s *EngagementService) ToggleLike(ctx context.Context, userID uint, postID string) (*ToggleResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, "post")
	}

	res := &ToggleResult{}
	var created bool
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		deleted, err := tx.Likes.DeleteLike(ctx, post.ID, userID)
		if err != nil {
			return err
		}
		if !deleted {
			// A concurrent duplicate leaves created false but the like in place.
			if created, err = tx.Likes.CreateLike(ctx, &models.Like{PostID: post.ID, UserID: userID}); err != nil {
				return err
			}
			res.Liked = true
		}
		res.LikesCount, err = tx.Likes.GetLikesCountByPostID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordToggle("post", res.Liked)
	logger.Log.Debug("Post like toggled",
		logger.WithUserID(userID),
		logger.WithPostID(post.ID),
		zap.Bool("liked", res.Liked),
	)
	if created {
		s.notifyOwner(ctx, userID, post.UserID, models.NotificationLike, post.ID, "post")
	}
	return res, nil
}

// ToggleCommentLike is ToggleLike for comments.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (*ToggleResult, error) {
	comment, err := s.store.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, notFoundAs(err, "comment")
	}

	res := &ToggleResult{}
	var created bool
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		deleted, err := tx.CommentLikes.DeleteCommentLike(ctx, comment.ID, userID)
		if err != nil {
			return err
		}
		if !deleted {
			if created, err = tx.CommentLikes.CreateCommentLike(ctx, &models.CommentLike{CommentID: comment.ID, UserID: userID}); err != nil {
				return err
			}
			res.Liked = true
		}
		res.LikesCount, err = tx.CommentLikes.GetCommentLikesCount(ctx, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordToggle("comment", res.Liked)
	if created {
		s.notifyOwner(ctx, userID, comment.UserID, models.NotificationLike, strconv.FormatUint(uint64(comment.ID), 10), "comment")
	}
	return res, nil
}

// AddComment stores a trimmed, non-empty comment on postID.
func (s *EngagementService) AddComment(ctx context.Context, userID uint, postID, text string) (*CommentResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("text", "comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, apperrors.Validation("text", "comment is too long")
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, "post")
	}
	author, err := s.store.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}

	res := &CommentResult{Username: author.Username}
	err = s.store.WithTx(ctx, func(tx *repositories.Store) error {
		res.Comment = models.Comment{PostID: post.ID, UserID: userID, Text: text}
		if err := tx.Comments.CreateComment(ctx, &res.Comment); err != nil {
			return err
		}
		var err error
		res.CommentsCount, err = tx.Comments.GetCommentsCountByPostID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.store.Notifications, notificationFor(models.NotificationComment, author, post.UserID, post.ID, "post"))
	return res, nil
}

func (s *EngagementService) notifyOwner(ctx context.Context, actorID, ownerID uint, kind, targetID, targetType string) {
	if actorID == ownerID {
		return
	}
	actor, err := s.store.Users.GetUserByID(ctx, actorID)
	if err != nil {
		return
	}
	notify(ctx, s.store.Notifications, notificationFor(kind, actor, ownerID, targetID, targetType))
}
