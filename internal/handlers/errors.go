package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrorHandler is the echo HTTPErrorHandler. Every failure leaves the API
// as {success:false, error} with a status derived from the error kind.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := echo.Map{"success": false, "error": "internal server error"}

	var appErr *apperrors.AppError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Status()
		body["error"] = appErr.Message
		body["code"] = appErr.Kind
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
	case errors.As(err, &he):
		code = he.Code
		body["error"] = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logger.Log.Warn("Failed to write error response", zap.Error(err))
	}
}

// bindAndValidate binds the request into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.ToLower(fe.Field())
			return apperrors.Validation(field, fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag()))
		}
		return apperrors.Validation("", err.Error())
	}
	return nil
}
