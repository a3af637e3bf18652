package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var (
	errNoFile           = errors.New("no file uploaded")
	errUnsupportedImage = errors.New("unsupported image format")
)

// Uploader stores resized images on disk and returns their public URL.
type Uploader struct {
	Dir       string
	URLPrefix string
	MaxWidth  uint
}

func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{Dir: dir, URLPrefix: "/uploads/", MaxWidth: 800}, nil
}

// SaveImage reads the multipart field, downsizes it and writes a JPEG.
// It returns errNoFile when the field is empty.
func (u *Uploader) SaveImage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", errNoFile
		}
		return "", err
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	case ".gif":
		img, err = gif.Decode(file)
	default:
		return "", errUnsupportedImage
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > u.MaxWidth {
		img = resize.Resize(u.MaxWidth, 0, img, resize.Lanczos3)
	}

	filename := uuid.New().String() + ".jpg"
	out, err := os.Create(filepath.Join(u.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode upload: %w", err)
	}
	return u.URLPrefix + filename, nil
}
