package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/auth"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations map[string]bool

func (m memoryRevocations) Revoke(_ context.Context, jti string, _ time.Time) error {
	m[jti] = true
	return nil
}

func (m memoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m[jti], nil
}

func runJWT(t *testing.T, tokens *auth.TokenManager, revoked memoryRevocations, header string) (*models.JwtCustomClaims, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *models.JwtCustomClaims
	err := JWTAuthMiddleware(tokens, revoked)(func(c echo.Context) error {
		got, _ = c.Get(ContextKeyUser).(*models.JwtCustomClaims)
		return nil
	})(c)
	return got, err
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	token, err := tokens.Issue(&models.User{ID: 3, Username: "alice"})
	require.NoError(t, err)
	revoked := memoryRevocations{}

	claims, err := runJWT(t, tokens, revoked, "Bearer "+token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.EqualValues(t, 3, claims.UserID)

	for _, header := range []string{"", "Token " + token, "Bearer not-a-jwt"} {
		_, err := runJWT(t, tokens, revoked, header)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he, header)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}

	revoked[claims.ID] = true
	_, err = runJWT(t, tokens, revoked, "Bearer "+token)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestPrometheusMiddlewareUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(PrometheusMiddleware(m))
	e.GET("/profile/:username", func(c echo.Context) error {
		if c.Param("username") == "ghost" {
			return apperrors.NotFound("user")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/profile/alice", "/profile/bob", "/profile/ghost"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/profile/:username", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/profile/:username", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
