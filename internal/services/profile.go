package services

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
)

// ProfileUser is the part of a user shown on a profile page.
type ProfileUser struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	Gender         string `json:"gender,omitempty"`
	ProfilePicture string `json:"profile_picture"`
	IsPrivate      bool   `json:"is_private"`
}

type ProfileStats struct {
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// Profile is either the full view or, for a private account the viewer may
// not see, a restricted view with no post data.
type Profile struct {
	User       ProfileUser `json:"user"`
	IsOwner    bool        `json:"is_owner"`
	Restricted bool        `json:"restricted"`
	Relationship
	Stats *ProfileStats `json:"stats,omitempty"`
	Posts []models.Post `json:"posts,omitempty"`
}

type ProfileService struct {
	store *repositories.Store
	posts repositories.PostRepository
}

func NewProfileService(store *repositories.Store, posts repositories.PostRepository) *ProfileService {
	return &ProfileService{store: store, posts: posts}
}

func (s *ProfileService) GetProfile(ctx context.Context, viewerID uint, username string) (*Profile, error) {
	owner, err := userByUsername(ctx, s.store.Users, username)
	if err != nil {
		return nil, err
	}

	allowed, rel, err := checkVisibility(ctx, s.store.Follows, owner, viewerID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User:         toProfileUser(owner),
		IsOwner:      owner.ID == viewerID,
		Relationship: rel,
	}
	if !allowed {
		profile.Restricted = true
		return profile, nil
	}

	posts, err := s.posts.GetPostsByUserID(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	sortNewestFirst(posts)
	stats := &ProfileStats{}
	if stats.PostsCount, err = s.posts.CountPostsByUserID(ctx, owner.ID); err != nil {
		return nil, err
	}
	if stats.FollowersCount, err = s.store.Follows.GetFollowersCount(ctx, owner.ID); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = s.store.Follows.GetFollowingCount(ctx, owner.ID); err != nil {
		return nil, err
	}

	profile.Stats = stats
	profile.Posts = posts
	return profile, nil
}

func toProfileUser(u *models.User) ProfileUser {
	return ProfileUser{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Bio:            u.Bio,
		Gender:         u.Gender,
		ProfilePicture: u.ProfilePicture,
		IsPrivate:      u.IsPrivate,
	}
}
