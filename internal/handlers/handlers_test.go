package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(err, c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorHandler(t *testing.T) {
	code, body := errorResponse(t, errors.Wrap(apperrors.Validation("text", "comment cannot be empty"), "add comment"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "comment cannot be empty", body["error"])
	assert.Equal(t, "text", body["field"])
	assert.Equal(t, string(apperrors.KindValidation), body["code"])

	code, body = errorResponse(t, apperrors.NotFound("post"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "post not found", body["error"])

	code, body = errorResponse(t, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", body["error"])

	code, body = errorResponse(t, errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := currentUserID(c)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	c.Set("user", &models.JwtCustomClaims{UserID: 9})
	id, err := currentUserID(c)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)
}

func TestUintParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("42")
	id, err := uintParam(c, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, v := range []string{"", "-1", "abc"} {
		c.SetParamValues(v)
		_, err := uintParam(c, "id")
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), v)
	}
}

func TestOptionalUploadWithoutMultipart(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"caption":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	upload, err := optionalUpload(c, "image")
	assert.NoError(t, err)
	assert.Nil(t, upload)
}

func TestHealthReportsFailingCheck(t *testing.T) {
	h := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	services := body["services"].(map[string]interface{})
	assert.Equal(t, "ok", services["postgres"])
	assert.Equal(t, "dial tcp: refused", services["redis"])
}
