package models

import "time"

const (
	NotificationFollow         = "follow"
	NotificationFollowRequest  = "follow_request"
	NotificationFollowApproved = "follow_approved"
	NotificationLike           = "like"
	NotificationComment        = "comment"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetID    string    `json:"target_id"`                  // post ID, comment ID, follow ID
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, comment, follow
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
