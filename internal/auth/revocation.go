package auth

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevocationStore remembers logged-out tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// GormRevocationStore keeps the denylist in the revoked_tokens table.
type GormRevocationStore struct {
	db *gorm.DB
}

func NewGormRevocationStore(db *gorm.DB) *GormRevocationStore {
	return &GormRevocationStore{db: db}
}

func (s *GormRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}).Error
	return errors.Wrap(err, "revoke token")
}

func (s *GormRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now().UTC()).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check revoked token")
}

// Purge drops entries whose token has expired anyway.
func (s *GormRevocationStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, errors.Wrap(res.Error, "purge revoked tokens")
}

const revokedKeyPrefix = "auth:revoked:"

// RedisRevocationStore stores one key per revoked jti, expiring with the
// token itself.
type RedisRevocationStore struct {
	client redis.Cmdable
}

func NewRedisRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(s.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(), "revoke token")
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, errors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}
