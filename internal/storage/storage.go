// Package storage saves uploaded media and hands back a public URL.
package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

const (
	MaxUploadSize = 50 << 20
	AvatarSize    = 320
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("file too large")
)

// Upload is a file received from a client, already read into memory.
type Upload struct {
	Filename string
	Data     []byte
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MediaStore persists a blob under folder and returns where it can be
// fetched from.
type MediaStore interface {
	Save(ctx context.Context, folder string, data []byte, contentType, extension string) (*UploadResult, error)
}

// ReadFileHeader loads a multipart file into an Upload.
func ReadFileHeader(fh *multipart.FileHeader) (*Upload, error) {
	if fh.Size > MaxUploadSize {
		return nil, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}
	return &Upload{Filename: fh.Filename, Data: data}, nil
}

// Detect sniffs the content type and checks it belongs to kind.
func Detect(data []byte, kind Kind) (*mimetype.MIME, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), string(kind)+"/") {
		return nil, errors.Wrapf(ErrUnsupportedMedia, "%s is not %s", mt.String(), kind)
	}
	return mt, nil
}

// SaveUpload checks the upload against kind and stores it.
func SaveUpload(ctx context.Context, store MediaStore, folder string, upload *Upload, kind Kind) (*UploadResult, error) {
	mt, err := Detect(upload.Data, kind)
	if err != nil {
		return nil, err
	}
	return store.Save(ctx, folder, upload.Data, mt.String(), mt.Extension())
}

// ResizeAvatar center-crops an image to a square avatar and re-encodes it
// as JPEG.
func ResizeAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedMedia, err.Error())
	}
	avatar := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encode avatar")
	}
	return buf.Bytes(), nil
}
