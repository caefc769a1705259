package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository, whatever the backing store,
// when a lookup by key matches nothing.
var ErrNotFound = errors.New("record not found")

// Store groups the relational repositories so a service can run several of
// them inside one transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Likes         LikeRepository
	Comments      CommentRepository
	CommentLikes  CommentLikeRepository
	Notifications NotificationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		CommentLikes:  NewPostgresCommentLikeRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// WithTx runs fn against a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
