// Package seed fills a development database with fake users, follows,
// posts and engagement.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/validators"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

type Options struct {
	Users        int
	PostsPerUser int
	// PrivateRatio is the share of accounts created private, 0..1.
	PrivateRatio float64
}

type Seeder struct {
	store *repositories.Store
	posts repositories.PostRepository
	rng   *rand.Rand
}

func NewSeeder(store *repositories.Store, posts repositories.PostRepository, seed int64) *Seeder {
	_ = gofakeit.Seed(seed)
	return &Seeder{store: store, posts: posts, rng: rand.New(rand.NewSource(seed))}
}

// Stats counts what one Run created.
type Stats struct {
	Users    int
	Follows  int
	Posts    int
	Likes    int
	Comments int
}

// Run seeds everything in dependency order.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Stats, error) {
	stats := &Stats{}

	users, err := s.seedUsers(ctx, opts.Users, opts.PrivateRatio)
	if err != nil {
		return nil, err
	}
	stats.Users = len(users)

	if stats.Follows, err = s.seedFollows(ctx, users); err != nil {
		return nil, err
	}

	posts, err := s.seedPosts(ctx, users, opts.PostsPerUser)
	if err != nil {
		return nil, err
	}
	stats.Posts = len(posts)

	if stats.Likes, stats.Comments, err = s.seedEngagement(ctx, users, posts); err != nil {
		return nil, err
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", stats.Users),
		zap.Int("follows", stats.Follows),
		zap.Int("posts", stats.Posts),
		zap.Int("likes", stats.Likes),
		zap.Int("comments", stats.Comments))
	return stats, nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int, privateRatio float64) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username, err := s.uniqueUsername(ctx)
		if err != nil {
			return nil, err
		}
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:  string(hash),
			Name:      gofakeit.Name(),
			Bio:       gofakeit.HipsterSentence(),
			Gender:    []string{"M", "F", "O"}[s.rng.Intn(3)],
			IsPrivate: s.rng.Float64() < privateRatio,
		}
		if err := s.store.Users.CreateUser(ctx, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// uniqueUsername draws fake usernames until one is valid and free.
func (s *Seeder) uniqueUsername(ctx context.Context) (string, error) {
	for {
		name := strings.ToLower(gofakeit.Username())
		if !validators.ValidUsername(name) {
			continue
		}
		taken, err := s.store.Users.UsernameTaken(ctx, name, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
}

// seedFollows gives every user a random set of followees. Edges toward
// private accounts are left pending half of the time.
func (s *Seeder) seedFollows(ctx context.Context, users []models.User) (int, error) {
	created := 0
	for _, follower := range users {
		for _, target := range users {
			if target.ID == follower.ID || s.rng.Float64() > 0.3 {
				continue
			}
			follow := &models.Follow{
				FollowerID:  follower.ID,
				FollowingID: target.ID,
				IsApproved:  !target.IsPrivate || s.rng.Intn(2) == 0,
			}
			ok, err := s.store.Follows.CreateFollow(ctx, follow)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User, perUser int) ([]models.Post, error) {
	now := time.Now()
	var posts []models.Post
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			post := models.Post{
				UserID:    user.ID,
				Caption:   gofakeit.HipsterSentence(),
				CreatedAt: gofakeit.DateRange(now.AddDate(0, 0, -30), now),
			}
			if s.rng.Intn(5) == 0 {
				post.VideoURL = fmt.Sprintf("https://cdn.example.com/videos/%s.mp4", gofakeit.UUID())
			} else {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", gofakeit.UUID())
			}
			if err := s.posts.CreatePost(ctx, &post); err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users []models.User, posts []models.Post) (int, int, error) {
	likes, comments := 0, 0
	for _, post := range posts {
		for _, user := range users {
			if s.rng.Float64() < 0.2 {
				ok, err := s.store.Likes.CreateLike(ctx, &models.Like{UserID: user.ID, PostID: post.ID})
				if err != nil {
					return likes, comments, err
				}
				if ok {
					likes++
				}
			}
			if s.rng.Float64() < 0.05 {
				comment := &models.Comment{
					PostID:    post.ID,
					UserID:    user.ID,
					Text:      gofakeit.HipsterSentence(),
					CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
				}
				if err := s.store.Comments.CreateComment(ctx, comment); err != nil {
					return likes, comments, err
				}
				comments++
			}
		}
	}
	return likes, comments, nil
}
