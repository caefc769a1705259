package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// optionalUpload reads a multipart file field. A missing field, or a
// request that is not multipart at all, yields nil.
func optionalUpload(c echo.Context, field string) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.Validation(field, "could not read upload")
	}
	upload, err := storage.ReadFileHeader(fh)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperrors.Validation(field, "file too large")
		}
		return nil, err
	}
	return upload, nil
}
