package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, postID string, userID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID string) (int64, error)
	GetLikesCountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike reports false when the user already likes the post.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "create like")
	}
	return res.RowsAffected > 0, nil
}

// DeleteLike reports whether a like was removed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete like")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, errors.Wrap(err, "count likes")
}

type postCount struct {
	PostID string
	Count  int64
}

func (r *PostgresLikeRepository) GetLikesCountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []postCount
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count likes")
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}

func (r *PostgresLikeRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "get liked posts")
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
