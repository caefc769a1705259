package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the status of every configured backing service
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterHealthRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health answers 200 when every check passes and 503 otherwise
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	services := echo.Map{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			services[name] = err.Error()
			continue
		}
		services[name] = "ok"
	}

	return c.JSON(status, echo.Map{
		"success":  status == http.StatusOK,
		"services": services,
	})
}
