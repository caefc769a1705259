package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:36;index;uniqueIndex:idx_user_post_like;not null"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_like;not null"`
	CreatedAt time.Time `json:"created_at"`
}
