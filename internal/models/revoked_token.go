package models

import "time"

// RevokedToken records a logged-out JWT until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index"`
}
