package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/storage"
	"github.com/pkg/errors"
)

const MaxCaptionLength = 2200

// CreatePostInput carries either uploaded files or already hosted URLs.
type CreatePostInput struct {
	Caption  string
	Image    *storage.Upload
	Video    *storage.Upload
	ImageURL string
	VideoURL string
}

type PostService struct {
	posts repositories.PostRepository
	media storage.MediaStore
}

func NewPostService(posts repositories.PostRepository, media storage.MediaStore) *PostService {
	return &PostService{posts: posts, media: media}
}

// CreatePost stores a post with exactly one media item. When both an image
// and a video are supplied the image is kept.
func (s *PostService) CreatePost(ctx context.Context, userID uint, in CreatePostInput) (*models.Post, error) {
	caption := strings.TrimSpace(in.Caption)
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return nil, apperrors.Validation("caption", "caption is too long")
	}

	post := &models.Post{UserID: userID, Caption: caption}
	switch {
	case in.Image != nil:
		url, err := s.upload(ctx, in.Image, storage.KindImage)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	case in.ImageURL != "":
		post.ImageURL = in.ImageURL
	case in.Video != nil:
		url, err := s.upload(ctx, in.Video, storage.KindVideo)
		if err != nil {
			return nil, err
		}
		post.VideoURL = url
	case in.VideoURL != "":
		post.VideoURL = in.VideoURL
	default:
		return nil, apperrors.Validation("media", "either image or video is required")
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	logger.Log.Info("Post created", logger.WithUserID(userID), logger.WithPostID(post.ID))
	return post, nil
}

func (s *PostService) upload(ctx context.Context, upload *storage.Upload, kind storage.Kind) (string, error) {
	res, err := storage.SaveUpload(ctx, s.media, "posts", upload, kind)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedMedia) {
			return "", apperrors.Validation(string(kind), "unsupported "+string(kind)+" type")
		}
		return "", err
	}
	return res.URL, nil
}
