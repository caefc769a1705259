package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error)
	GetCommentsCountByPostID(ctx context.Context, postID string) (int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(comment).Error, "create comment")
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

// GetCommentsByPostIDs returns comments oldest first, the order they are
// shown under a post.
func (r *PostgresCommentRepository) GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	var comments []models.Comment
	if len(postIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, errors.Wrap(err, "get comments")
}

func (r *PostgresCommentRepository) GetCommentsCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, errors.Wrap(err, "count comments")
}
