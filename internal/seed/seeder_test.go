package seed

import (
	"context"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/anonto42/instaclone/backend/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeederRun(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := repositories.NewStore(db)
	posts := repositories.NewPostgresPostRepository(db)

	stats, err := NewSeeder(store, posts, 42).Run(context.Background(), Options{
		Users:        6,
		PostsPerUser: 2,
		PrivateRatio: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Users)
	assert.Equal(t, 12, stats.Posts)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 6)
	for _, u := range users {
		assert.True(t, validators.ValidUsername(u.Username), u.Username)
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(DefaultPassword)))

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var follows int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	assert.EqualValues(t, stats.Follows, follows)

	for _, u := range users {
		if u.IsPrivate {
			continue
		}
		var pending int64
		require.NoError(t, db.Model(&models.Follow{}).
			Where("following_id = ? AND is_approved = ?", u.ID, false).Count(&pending).Error)
		assert.Zero(t, pending, "public account %s has pending requests", u.Username)
	}

	var stored []models.Post
	require.NoError(t, db.Find(&stored).Error)
	for _, p := range stored {
		assert.True(t, p.HasMedia())
	}
}
