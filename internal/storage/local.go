package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalStore writes media under a directory served statically at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, folder string, data []byte, contentType, extension string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := path.Join(folder, uuid.NewString()+extension)
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, errors.Wrap(err, "create media folder")
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "write media")
	}
	return &UploadResult{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
