package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kyc-hub/imaging"
)

// upscaling stops paying off beyond this side length
const maxUpscaleSide = 2000

type variant struct {
	name string
	img  image.Image
}

// Processor runs an Engine over several preprocessed versions of an image
// and keeps the longest transcription.
type Processor struct {
	engine      Engine
	modes       []PageSegMode
	parallelism int
	log         *zap.Logger
}

type Option func(*Processor)

func WithModes(modes ...PageSegMode) Option {
	return func(p *Processor) { p.modes = modes }
}

func WithParallelism(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) { p.log = log }
}

func NewProcessor(engine Engine, opts ...Option) *Processor {
	p := &Processor{
		engine:      engine,
		modes:       DefaultModes,
		parallelism: 2,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts text and fields from doc. Missing fields are reported in
// Result.Error without failing; only unreadable or unsupported files fail.
func (p *Processor) Process(ctx context.Context, doc Document) (res Result) {
	start := time.Now()
	res = Result{
		Success:         true,
		DocumentType:    strings.ToLower(doc.DocType),
		ExtractedFields: map[string]string{},
	}
	defer func() {
		res.ProcessingTime = time.Since(start)
		p.log.Info("document processed",
			zap.String("filename", doc.Filename),
			zap.String("document_type", res.DocumentType),
			zap.Float64("confidence", res.ConfidenceScore),
			zap.Duration("elapsed", res.ProcessingTime),
		)
	}()

	text, err := p.readText(ctx, doc, &res)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		return res
	}

	res.RawText = text
	res.ExtractedFields = ExtractFields(text, res.DocumentType)
	res.ConfidenceScore = Confidence(res.ExtractedFields, res.DocumentType)

	numberField := res.DocumentType + "_number"
	switch {
	case text == "":
		res.Error = "No text could be extracted from the document"
	case res.ExtractedFields[numberField] == "":
		res.Error = fmt.Sprintf("Could not extract valid %s number.", res.DocumentType)
	case res.ExtractedFields[FieldName] == "":
		res.Error = "Could not extract name from the document."
	}
	return res
}

func (p *Processor) readText(ctx context.Context, doc Document, res *Result) (string, error) {
	switch Extension(doc.Filename) {
	case "pdf":
		res.Method = "pdf_text_layer"
		return PDFText(doc.Data)
	case "png", "jpg", "jpeg", "bmp", "tiff", "tif", "webp":
		img, _, err := imaging.Decode(doc.Data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		res.Image = img
		text, method, err := p.RecognizeImage(ctx, img)
		res.Method = method
		return text, err
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, Extension(doc.Filename))
	}
}

// RecognizeImage OCRs every variant/mode pair and returns the longest text
// together with the name of the pass that produced it.
func (p *Processor) RecognizeImage(ctx context.Context, img image.Image) (string, string, error) {
	variants := preprocess(img)

	var (
		mu         sync.Mutex
		best       string
		bestMethod string
		failures   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for _, v := range variants {
		for _, mode := range p.modes {
			g.Go(func() error {
				text, err := p.engine.Recognize(gctx, v.img, mode)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures++
					p.log.Debug("ocr pass failed",
						zap.String("variant", v.name),
						zap.Int("psm", int(mode)),
						zap.Error(err),
					)
					return nil
				}
				text = strings.TrimSpace(text)
				if len(text) > len(best) {
					best = text
					bestMethod = fmt.Sprintf("%s/psm%d", v.name, mode)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if best == "" && failures == len(variants)*len(p.modes) {
		return "", "", fmt.Errorf("%s recognised nothing in %d passes", p.engine.Name(), failures)
	}
	return best, bestMethod, nil
}

func preprocess(img image.Image) []variant {
	gray := imaging.Grayscale(img)
	variants := []variant{
		{name: "grayscale", img: gray},
		{name: "contrast", img: imaging.StretchContrast(gray)},
		{name: "threshold", img: imaging.Binarize(gray)},
	}

	b := gray.Bounds()
	if b.Dx()*2 > maxUpscaleSide || b.Dy()*2 > maxUpscaleSide {
		return variants
	}
	for i := range variants {
		variants[i].img = imaging.Upscale(variants[i].img, 2)
	}
	return variants
}
