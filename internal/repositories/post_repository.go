package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. It is
// implemented over PostgreSQL and over a MongoDB collection.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// GetPostsByUserID returns the user's posts that carry media, newest first.
	GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error)
	// GetPostsByUserIDs returns all posts by the given owners, newest first.
	GetPostsByUserIDs(ctx context.Context, userIDs []uint) ([]models.Post, error)
	// SamplePostsExcludingUsers returns up to limit random posts whose owner
	// is not in userIDs.
	SamplePostsExcludingUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error)
	CountPostsByUserID(ctx context.Context, userID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository with gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(post).Error, "create post")
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND (image_url <> '' OR video_url <> '')", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, errors.Wrap(err, "get posts by user")
}

func (r *PostgresPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []uint) ([]models.Post, error) {
	var posts []models.Post
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, errors.Wrap(err, "get posts by users")
}

func (r *PostgresPostRepository) SamplePostsExcludingUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if len(userIDs) > 0 {
		q = q.Where("user_id NOT IN ?", userIDs)
	}
	err := q.Order("RANDOM()").Limit(limit).Find(&posts).Error
	return posts, errors.Wrap(err, "sample posts")
}

func (r *PostgresPostRepository) CountPostsByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, errors.Wrap(err, "count posts")
}
