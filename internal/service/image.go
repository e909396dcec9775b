package service

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes 是单张上传图片的大小上限。
const MaxImageBytes = 10 << 20

var (
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrImageUnsupported = errors.New("unsupported image format")
)

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format      string
	ContentType string
	Extension   string
	Width       int
	Height      int
}

var imageFormats = map[string]struct{ contentType, ext string }{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

// ReadImage 读取整个上传内容并校验其为受支持的图片格式。
func ReadImage(body io.Reader) ([]byte, ImageInfo, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return nil, ImageInfo{}, errors.Wrap(err, "read upload")
	}
	if len(data) > MaxImageBytes {
		return nil, ImageInfo{}, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, ErrImageUnsupported
	}
	meta, ok := imageFormats[format]
	if !ok {
		return nil, ImageInfo{}, ErrImageUnsupported
	}
	return data, ImageInfo{
		Format:      format,
		ContentType: meta.contentType,
		Extension:   meta.ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
