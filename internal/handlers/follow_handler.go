package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow edges and follow requests
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:username", h.ToggleFollow)
	g.PUT("/follow/:username", h.Follow)
	g.DELETE("/follow/:username", h.Unfollow)

	g.GET("/follow-requests", h.GetPendingRequests)
	g.POST("/follow-requests/:id/approve", h.ApproveRequest)
	g.POST("/follow-requests/:id/reject", h.RejectRequest)

	g.GET("/followers/:username", h.GetFollowers)
	g.GET("/following/:username", h.GetFollowing)
}

type followAction func(ctx context.Context, followerID uint, username string) (services.FollowState, error)

func (h *FollowHandler) respondState(c echo.Context, action followAction) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	state, err := action(c.Request().Context(), userID, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"state": state}})
}

// ToggleFollow follows when there is no edge and removes it otherwise
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	return h.respondState(c, h.follows.Toggle)
}

func (h *FollowHandler) Follow(c echo.Context) error {
	return h.respondState(c, h.follows.Follow)
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	return h.respondState(c, h.follows.Unfollow)
}

// GetPendingRequests lists requests waiting for the current user's approval
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	requests, err := h.follows.PendingRequests(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requests": requests}})
}

// ApproveRequest accepts a pending follow request
func (h *FollowHandler) ApproveRequest(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	followID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	follow, err := h.follows.Approve(c.Request().Context(), userID, followID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": follow})
}

// RejectRequest deletes a follow request
func (h *FollowHandler) RejectRequest(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	followID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.follows.Reject(c.Request().Context(), userID, followID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Follow request rejected"})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	users, err := h.follows.Followers(c.Request().Context(), userID, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": users}})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	users, err := h.follows.Following(c.Request().Context(), userID, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": users}})
}
