// Package media нормализует загружаемые файлы: изображения перекодируются
// в JPEG с учётом EXIF-ориентации, PDF сжимаются внешней утилитой Ghostscript.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	// Декодер webp для image.Decode.
	_ "golang.org/x/image/webp"
)

const (
	// ImageExt — расширение нормализованного изображения.
	ImageExt         = ".jpg"
	ImageContentType = "image/jpeg"
)

// ErrDecode возвращается, если изображение не удалось прочитать.
var ErrDecode = errors.New("media: cannot decode image")

// ImageEncoder перекодирует изображения в JPEG.
type ImageEncoder struct {
	quality int
}

// NewImageEncoder создаёт ImageEncoder с качеством JPEG 1..100.
func NewImageEncoder(quality int) *ImageEncoder {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	return &ImageEncoder{quality: quality}
}

// Transform поворачивает изображение по EXIF, заливает прозрачность белым
// и кодирует результат в JPEG.
func (e *ImageEncoder) Transform(_ context.Context, data []byte) ([]byte, error) {
	const op = "media.ImageEncoder.Transform"

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}

	b := img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(e.quality)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
