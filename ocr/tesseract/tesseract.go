// Package tesseract provides the gosseract-backed ocr.Engine. It needs the
// Tesseract and Leptonica shared libraries at build time.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"kyc-hub/ocr"
)

type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func New(languages ...string) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{languages: languages, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Version() string { return gosseract.Version() }

// Recognize runs a single Tesseract pass. A client is created per call since
// gosseract clients are not safe for concurrent use.
func (e *Engine) Recognize(ctx context.Context, img image.Image, mode ocr.PageSegMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

var _ ocr.Engine = (*Engine)(nil)
