package auth

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(&models.User{ID: 7, Username: "alice"})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueGivesEachTokenItsOwnID(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: 1, Username: "alice"}
	a, err := m.Issue(user)
	require.NoError(t, err)
	b, err := m.Issue(user)
	require.NoError(t, err)

	ca, err := m.Parse(a)
	require.NoError(t, err)
	cb, err := m.Parse(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := &models.JwtCustomClaims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ID: "x"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGormRevocationStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewGormRevocationStore(db)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-old", time.Now().Add(-time.Hour)))
	purged, err := store.Purge(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}
