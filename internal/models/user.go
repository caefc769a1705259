package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password       string    `json:"-"` // bcrypt hash
	Name           string    `json:"name" gorm:"size:150"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender" gorm:"size:1"`
	ProfilePicture string    `json:"profile_picture"`
	IsPrivate      bool      `json:"is_private" gorm:"default:false"`
	FirebaseUID    *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCompact is the author block embedded in feed items and lists.
type UserCompact struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
	IsPrivate      bool   `json:"is_private"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		IsPrivate:      u.IsPrivate,
	}
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,username"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Name     string `json:"name" form:"name" validate:"omitempty,max=150"`
	Bio      string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	Gender   string `json:"gender" form:"gender" validate:"omitempty,oneof=M F O"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" form:"username" validate:"omitempty,username"`
	Email    string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Name     string `json:"name,omitempty" form:"name" validate:"omitempty,max=150"`
	Bio      string `json:"bio,omitempty" form:"bio" validate:"omitempty,max=500"`
	Gender   string `json:"gender,omitempty" form:"gender" validate:"omitempty,oneof=M F O"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// RegisteredClaims.ID carries the token id used for logout.
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
