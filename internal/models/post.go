package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is stored either in PostgreSQL or in the MongoDB "posts" collection;
// the id is the same UUID string in both.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	UserID    uint      `json:"user_id" gorm:"index;not null" bson:"user_id"`
	ImageURL  string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	VideoURL  string    `json:"video_url,omitempty" bson:"video_url,omitempty"`
	Caption   string    `json:"caption" gorm:"size:2200" bson:"caption"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	p.EnsureID()
	return nil
}

// EnsureID assigns a fresh UUID when the post has none yet.
func (p *Post) EnsureID() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
}

func (p *Post) HasMedia() bool {
	return p.ImageURL != "" || p.VideoURL != ""
}

type CreatePostRequest struct {
	Caption  string `json:"caption" form:"caption" validate:"max=2200"`
	ImageURL string `json:"image_url" form:"image_url" validate:"omitempty,url"`
	VideoURL string `json:"video_url" form:"video_url" validate:"omitempty,url"`
}
