package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImage(t *testing.T, field, filename string, width, height int) *http.Request {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(1, 1, color.RGBA{R: 242, G: 169, A: 255})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, img))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSaveImageDownsizes(t *testing.T) {
	u, err := NewUploader(t.TempDir())
	require.NoError(t, err)

	path, err := u.SaveImage(multipartImage(t, "image", "hive.png", 1600, 400), "image")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/"))

	f, err := os.Open(filepath.Join(u.Dir, strings.TrimPrefix(path, "/uploads/")))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestSaveImageErrors(t *testing.T) {
	u, err := NewUploader(t.TempDir())
	require.NoError(t, err)

	_, err = u.SaveImage(multipartImage(t, "image", "hive.bmp", 10, 10), "image")
	assert.ErrorIs(t, err, errUnsupportedImage)

	_, err = u.SaveImage(multipartImage(t, "image", "hive.png", 10, 10), "hive_picture")
	assert.ErrorIs(t, err, errNoFile)

	_, err = u.SaveImage(httptest.NewRequest(http.MethodPost, "/upload", nil), "image")
	assert.ErrorIs(t, err, errNoFile)
}
