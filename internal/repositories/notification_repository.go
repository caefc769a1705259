package repositories

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// NotificationGroups buckets a recipient's notifications by age.
type NotificationGroups struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"this_week"`
	Older     []models.Notification `json:"older"`
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, recipientID uint, now time.Time) (*NotificationGroups, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID uint) (bool, error)
	MarkAllAsRead(ctx context.Context, recipientID uint) error
}

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(notification).Error, "create notification")
}

func (r *PostgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}

	offset := (page - 1) * limit
	err := db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, errors.Wrap(err, "list notifications")
}

func (r *PostgresNotificationRepository) GetGrouped(ctx context.Context, recipientID uint, now time.Time) (*NotificationGroups, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)
	groups := &NotificationGroups{}

	if err := db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&groups.Today).Error; err != nil {
		return nil, errors.Wrap(err, "today")
	}
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&groups.Yesterday).Error; err != nil {
		return nil, errors.Wrap(err, "yesterday")
	}
	// excludes today and yesterday
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&groups.ThisWeek).Error; err != nil {
		return nil, errors.Wrap(err, "this week")
	}
	if err := db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(50).Find(&groups.Older).Error; err != nil {
		return nil, errors.Wrap(err, "older")
	}

	return groups, nil
}

func (r *PostgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, errors.Wrap(err, "count unread")
}

// MarkAsRead only touches notifications addressed to recipientID and
// reports whether one matched.
func (r *PostgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "mark read")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	return errors.Wrap(err, "mark all read")
}
