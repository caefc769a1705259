// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database. The pool is capped
// at one connection because every new connection to ":memory:" would see an
// empty database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user with a predictable email.
func CreateUser(t *testing.T, db *gorm.DB, username string, private bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  "x",
		Name:      username,
		IsPrivate: private,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts an image post by userID at the given time.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    userID,
		ImageURL:  "https://cdn.example.com/" + fmt.Sprint(createdAt.UnixNano()) + ".jpg",
		Caption:   "caption",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// Follow inserts an edge in the given approval state.
func Follow(t *testing.T, db *gorm.DB, followerID, followingID uint, approved bool) *models.Follow {
	t.Helper()
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID, IsApproved: approved}
	require.NoError(t, db.Create(follow).Error)
	return follow
}
