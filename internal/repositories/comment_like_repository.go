package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	CreateCommentLike(ctx context.Context, like *models.CommentLike) (bool, error)
	DeleteCommentLike(ctx context.Context, commentID, userID uint) (bool, error)
	GetCommentLikesCount(ctx context.Context, commentID uint) (int64, error)
	GetCommentLikesCountByIDs(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
}

// PostgresCommentLikeRepository implements CommentLikeRepository for PostgreSQL
type PostgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) *PostgresCommentLikeRepository {
	return &PostgresCommentLikeRepository{db: db}
}

func (r *PostgresCommentLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "create comment like")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresCommentLikeRepository) DeleteCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete comment like")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresCommentLikeRepository) GetCommentLikesCount(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, errors.Wrap(err, "count comment likes")
}

func (r *PostgresCommentLikeRepository) GetCommentLikesCountByIDs(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CommentID uint
		Count     int64
	}
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count comment likes")
	}
	for _, row := range rows {
		counts[row.CommentID] = row.Count
	}
	return counts, nil
}

func (r *PostgresCommentLikeRepository) GetLikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "get liked comments")
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
