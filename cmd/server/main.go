package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/handlers"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/router"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/internal/storage"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/anonto42/instaclone/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	if err := db.Migrate(); err != nil {
		return err
	}

	checks := map[string]handlers.HealthCheck{"postgres": db.PingPostgres}

	var posts repositories.PostRepository = repositories.NewPostgresPostRepository(db.Postgres)
	if db.Mongo != nil {
		mongoPosts := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := mongoPosts.EnsureIndexes(ctx); err != nil {
			return err
		}
		posts = mongoPosts
		checks["mongo"] = db.PingMongo
		logger.Log.Info("Posts stored in MongoDB", zap.String("database", cfg.MongoDatabase))
	}

	var revocations auth.RevocationStore
	if db.Redis != nil {
		revocations = auth.NewRedisRevocationStore(db.Redis)
		checks["redis"] = db.PingRedis
	} else {
		gormRevocations := auth.NewGormRevocationStore(db.Postgres)
		go purgeRevokedTokens(ctx, gormRevocations, time.Hour)
		revocations = gormRevocations
	}

	e := echo.New()
	m := metrics.New()
	config.SetupMiddleware(e, m)

	var media storage.MediaStore
	switch cfg.MediaBackend {
	case "s3":
		media, err = storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.MediaBaseURL)
	default:
		media, err = storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
		e.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}
	if err != nil {
		return err
	}

	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return err
	}
	var verifier services.IDTokenVerifier
	if fb != nil {
		verifier = fb.AuthClient
	}

	router.SetupRoutes(e, router.Dependencies{
		DB:               db.Postgres,
		Posts:            posts,
		Media:            media,
		Tokens:           auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Revocations:      revocations,
		Firebase:         verifier,
		Metrics:          m,
		FeedPadThreshold: cfg.FeedPadThreshold,
		FeedPadSize:      cfg.FeedPadSize,
		AuthRateLimit:    rate.Limit(cfg.AuthRateLimit),
		HealthChecks:     checks,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- server.ListenAndServe()
	}()
	go func() {
		logger.Log.Info("Starting metrics server", zap.String("port", cfg.MetricsPort))
		errCh <- metricsServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Metrics server shutdown failed", zap.Error(err))
	}
	return nil
}

// purgeRevokedTokens drops expired denylist rows until ctx is done. Redis
// expires its keys by itself.
func purgeRevokedTokens(ctx context.Context, store *auth.GormRevocationStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		purged, err := store.Purge(ctx, time.Now())
		if err != nil {
			logger.Log.Warn("Failed to purge revoked tokens", zap.Error(err))
		} else if purged > 0 {
			logger.Log.Info("Purged revoked tokens", zap.Int64("count", purged))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
