package handlers

import (
	"strconv"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/labstack/echo/v4"
)

func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get("user").(*models.JwtCustomClaims)
	return claims
}

// getUserIDFromContext returns the authenticated user's id, or 0.
func getUserIDFromContext(c echo.Context) uint {
	if claims := getClaimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func currentUserID(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, apperrors.Unauthorized("user not authenticated")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperrors.Validation(name, "invalid "+name)
	}
	return uint(v), nil
}
