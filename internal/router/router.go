package router

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/handlers"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/internal/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Dependencies are the backing services the routes are built on.
type Dependencies struct {
	DB          *gorm.DB
	Posts       repositories.PostRepository
	Media       storage.MediaStore
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Firebase    services.IDTokenVerifier
	Metrics     *metrics.Metrics

	FeedPadThreshold int
	FeedPadSize      int

	// AuthRateLimit caps requests per second per client on the public auth
	// routes. Zero disables the limiter.
	AuthRateLimit rate.Limit

	HealthChecks map[string]handlers.HealthCheck
}

// SetupRoutes builds services and handlers and registers every route.
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	store := repositories.NewStore(deps.DB)

	// --- Services ---
	userService := services.NewUserService(store, deps.Media, deps.Tokens, deps.Revocations, deps.Firebase)
	profileService := services.NewProfileService(store, deps.Posts)
	feedService := services.NewFeedService(store, deps.Posts, deps.FeedPadThreshold, deps.FeedPadSize, deps.Metrics)
	postService := services.NewPostService(deps.Posts, deps.Media)
	followService := services.NewFollowService(store, deps.Metrics)
	engagementService := services.NewEngagementService(store, deps.Posts, deps.Metrics)
	notificationService := services.NewNotificationService(store.Notifications, store.Users)

	// Health check - always accessible
	handlers.NewHealthHandler(deps.HealthChecks).RegisterHealthRoutes(e)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "instaclone api"})
	})

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	if deps.AuthRateLimit > 0 {
		authGroup.Use(eMiddleware.RateLimiter(eMiddleware.NewRateLimiterMemoryStore(deps.AuthRateLimit)))
	}
	authHandler := handlers.NewAuthHandler(userService)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Log.Debug("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.Tokens, deps.Revocations))
	authHandler.RegisterSessionRoutes(api)

	handlers.NewUserHandler(userService, profileService).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postService, feedService, userService).RegisterPostRoutes(api)
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(api)
	handlers.NewFollowHandler(followService).RegisterFollowRoutes(api)
	handlers.NewEngagementHandler(engagementService).RegisterEngagementRoutes(api)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)

	logger.Log.Info("All routes configured.")
}
