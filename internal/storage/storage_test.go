package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	data := pngBytes(t, 4, 4)

	mt, err := Detect(data, KindImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt.String())
	assert.Equal(t, ".png", mt.Extension())

	_, err = Detect(data, KindVideo)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = Detect([]byte("just some text"), KindImage)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestResizeAvatar(t *testing.T) {
	out, err := ResizeAvatar(pngBytes(t, 800, 400))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())

	mt, err := Detect(out, KindImage)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt.String())
}

func TestResizeAvatarRejectsNonImage(t *testing.T) {
	_, err := ResizeAvatar([]byte("nope"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	data := pngBytes(t, 2, 2)
	res, err := SaveUpload(context.Background(), store, "posts", &Upload{Filename: "a.png", Data: data}, KindImage)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.URL, "/media/posts/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.EqualValues(t, len(data), res.Size)

	written, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}
