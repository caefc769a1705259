package models

import "time"

// Follow is a directed edge; IsApproved is false while a request to a
// private account is pending.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	IsApproved  bool      `json:"is_approved" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
}
