// Package services holds the business rules: feed assembly, the visibility
// gate, the follow state machine and the engagement toggles. Handlers call
// into it and translate apperrors into HTTP responses.
package services

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/pkg/errors"
)

// notFoundAs converts a repository miss into a NotFound for resource and
// passes every other error through.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

func userByUsername(ctx context.Context, users repositories.UserRepository, username string) (*models.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return user, nil
}

func compactUsers(users []models.User) map[uint]models.UserCompact {
	out := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	return out
}
