package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// EngagementHandler handles likes and comments
type EngagementHandler struct {
	engagement *services.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagement *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// RegisterEngagementRoutes registers like and comment routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/comments/:id/like", h.LikeComment)
	g.POST("/posts/:id/comments", h.AddComment)
}

// LikePost toggles the current user's like on a post. The body is the
// flat {liked, likes_count} pair the client updates its counter from.
func (h *EngagementHandler) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	res, err := h.engagement.ToggleLike(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *EngagementHandler) LikeComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	commentID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.engagement.ToggleCommentLike(c.Request().Context(), userID, commentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// AddComment stores a comment on a post
func (h *EngagementHandler) AddComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	res, err := h.engagement.AddComment(c.Request().Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":        true,
		"comment_id":     res.Comment.ID,
		"username":       res.Username,
		"comments_count": res.CommentsCount,
		"comment":        res.Comment,
	})
}
