package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and user directory requests
type UserHandler struct {
	users    *services.UserService
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, profiles *services.ProfileService) *UserHandler {
	return &UserHandler{users: users, profiles: profiles}
}

// RegisterProfileRoutes registers profile and search routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/:username", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/profile/privacy", h.TogglePrivacy)
	g.GET("/search", h.SearchUsers)
}

// GetProfile returns the full profile, or the restricted view of a private
// account the viewer does not follow.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetProfile(c.Request().Context(), userID, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// UpdateProfile edits the current user's profile. Accepts JSON or a
// multipart form with an optional profile_picture file.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	avatar, err := optionalUpload(c, "profile_picture")
	if err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, req, avatar)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// TogglePrivacy switches the account between public and private
func (h *UserHandler) TogglePrivacy(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	isPrivate, err := h.users.TogglePrivate(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"is_private": isPrivate}})
}

// SearchUsers searches users by username or name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	users, err := h.users.Search(c.Request().Context(), userID, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users, "query": query},
	})
}
