package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/home", h.GetFeed)
}

// GetFeed returns the viewer's feed, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	posts, err := h.feed.BuildFeed(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
	})
}
