// Package imaging holds the pixel-level helpers shared by OCR and fraud
// checks: decoding, preprocessing, perceptual hashing and quality metrics.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MaxDimension = 32768
	MaxPixels    = 64 << 20
)

// ErrTooLarge rejects images whose header promises more pixels than we decode
var ErrTooLarge = errors.New("image too large")

func checkBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image bounds invalid (%d x %d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %d x %d exceeds %d per side", ErrTooLarge, width, height, MaxDimension)
	}
	if pixels := int64(width) * int64(height); pixels > MaxPixels {
		return fmt.Errorf("%w: %d pixels exceeds %d", ErrTooLarge, pixels, MaxPixels)
	}
	return nil
}

// Decode decodes any of the registered raster formats and returns the format name.
// The header is checked first so oversized images are never allocated.
func Decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if err := checkBounds(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}
