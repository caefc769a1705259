package repositories

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow edge operations
type FollowRepository interface {
	GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	GetFollowByID(ctx context.Context, id uint) (*models.Follow, error)
	CreateFollow(ctx context.Context, follow *models.Follow) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	DeleteFollowByID(ctx context.Context, id uint) error
	ApproveFollow(ctx context.Context, id uint) error
	GetApprovedFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFollowStates(ctx context.Context, followerID uint, followingIDs []uint) (map[uint]bool, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) GetFollowByID(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).First(&follow, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &follow, nil
}

// CreateFollow inserts the edge unless one already exists for the pair.
// It reports whether a row was written.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "create follow")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete follow")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollowByID(ctx context.Context, id uint) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error, "delete follow")
}

func (r *PostgresFollowRepository) ApproveFollow(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("id = ?", id).
		Update("is_approved", true).Error
	return errors.Wrap(err, "approve follow")
}

func (r *PostgresFollowRepository) GetApprovedFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND is_approved = ?", userID, true).
		Pluck("following_id", &ids).Error
	return ids, errors.Wrap(err, "get following ids")
}

// GetFollowStates returns, for each target the follower has an edge to,
// whether that edge is approved. Targets without an edge are absent.
func (r *PostgresFollowRepository) GetFollowStates(ctx context.Context, followerID uint, followingIDs []uint) (map[uint]bool, error) {
	states := make(map[uint]bool, len(followingIDs))
	if len(followingIDs) == 0 {
		return states, nil
	}
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id IN ?", followerID, followingIDs).
		Find(&follows).Error
	if err != nil {
		return nil, errors.Wrap(err, "get follow states")
	}
	for _, f := range follows {
		states[f.FollowingID] = f.IsApproved
	}
	return states, nil
}

func (r *PostgresFollowRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("following_id = ? AND is_approved = ?", userID, false).
		Order("created_at DESC").
		Find(&follows).Error
	return follows, errors.Wrap(err, "get pending requests")
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ? AND follows.is_approved = ?", userID, true).
		Order("users.username ASC").
		Find(&users).Error
	return users, errors.Wrap(err, "get followers")
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ? AND follows.is_approved = ?", userID, true).
		Order("users.username ASC").
		Find(&users).Error
	return users, errors.Wrap(err, "get following")
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ? AND is_approved = ?", userID, true).
		Count(&count).Error
	return count, errors.Wrap(err, "count followers")
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND is_approved = ?", userID, true).
		Count(&count).Error
	return count, errors.Wrap(err, "count following")
}
