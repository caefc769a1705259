package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:36;index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest leaves Text unvalidated on purpose: an empty comment
// is reported as {success:false} by the service, not as a bind error.
type CreateCommentRequest struct {
	Text string `json:"text" form:"text"`
}
