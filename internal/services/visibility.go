package services

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/pkg/errors"
)

// Relationship is the viewer's follow edge toward a profile owner.
type Relationship struct {
	IsFollowing bool `json:"is_following"`
	IsPending   bool `json:"is_pending"`
}

// CanView reports whether viewerID may see owner's posts: the viewer is the
// owner, the owner is public, or the viewer holds an approved follow edge.
func CanView(owner *models.User, viewerID uint, approved bool) bool {
	return owner.ID == viewerID || !owner.IsPrivate || approved
}

// relationshipTo loads the viewer's edge toward owner. The owner has no
// edge to itself.
func relationshipTo(ctx context.Context, follows repositories.FollowRepository, viewerID, ownerID uint) (Relationship, error) {
	if viewerID == ownerID {
		return Relationship{}, nil
	}
	follow, err := follows.GetFollow(ctx, viewerID, ownerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return Relationship{}, nil
	}
	if err != nil {
		return Relationship{}, err
	}
	return Relationship{IsFollowing: follow.IsApproved, IsPending: !follow.IsApproved}, nil
}

// checkVisibility runs the gate for viewerID against owner.
func checkVisibility(ctx context.Context, follows repositories.FollowRepository, owner *models.User, viewerID uint) (bool, Relationship, error) {
	rel, err := relationshipTo(ctx, follows, viewerID, owner.ID)
	if err != nil {
		return false, rel, err
	}
	return CanView(owner, viewerID, rel.IsFollowing), rel, nil
}
