package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post creation and post detail requests
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
	users *services.UserService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, feed *services.FeedService, users *services.UserService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed, users: users}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/profile/:username", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost uploads a post to the current user's own profile. The media
// comes either as an image/video file or as an image_url/video_url field.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Username != c.Param("username") {
		return apperrors.Validation("username", "you can only post to your own profile")
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := optionalUpload(c, "image")
	if err != nil {
		return err
	}
	video, err := optionalUpload(c, "video")
	if err != nil {
		return err
	}

	post, err := h.posts.CreatePost(ctx, userID, services.CreatePostInput{
		Caption:  req.Caption,
		Image:    image,
		Video:    video,
		ImageURL: req.ImageURL,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// GetPost returns a post together with the rest of its owner's posts
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	detail, err := h.feed.UserPosts(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": detail})
}
