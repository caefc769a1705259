package config

import (
	"github.com/anonto42/instaclone/backend/internal/handlers"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	appMiddleware "github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// SetupMiddleware installs the global middleware chain, the validator and
// the error handler.
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics) {
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Validator = validators.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				logger.WithRequestID(v.RequestID),
			}
			if v.Error != nil {
				logger.Log.Warn("Request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Log.Info("Request", fields...)
			return nil
		},
	}))
	e.Use(middleware.CORS())
	// Room for a full upload plus the multipart envelope.
	e.Use(middleware.BodyLimit("60M"))
	e.Use(appMiddleware.PrometheusMiddleware(m))
}
