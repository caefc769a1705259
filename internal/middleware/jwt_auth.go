package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKeyUser is where the verified claims are stored on the echo context.
const ContextKeyUser = "user"

// JWTAuthMiddleware checks for a valid, unrevoked bearer token and extracts
// the user claims.
func JWTAuthMiddleware(tokens *auth.TokenManager, revocations auth.RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			revoked, err := revocations.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				logger.Log.Error("Failed to check token revocation", zap.Error(err))
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to verify session")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
			}

			c.Set(ContextKeyUser, claims)
			return next(c)
		}
	}
}
