// Package pagetext supplies ordered per-page plain text for a batch,
// from the PDF text layer or from OCR when the batch is a raw scan.
package pagetext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNoText is returned when a provider yields no text for any page of a
// batch. This is the one fatal condition of a run: the whole batch
// aborts rather than producing a partial result.
var ErrNoText = errors.New("no page text extracted for any page")

// Provider supplies the ordered page texts for one source PDF. The
// segmenter needs every page before boundary detection starts, so
// providers return the full batch, not a stream.
type Provider interface {
	PageTexts(ctx context.Context, source string) ([]string, error)
}

// sampleLimit caps how many pages the scanned-batch heuristic inspects
const sampleLimit = 3

// looksScanned samples up to three spread-out pages and reports whether
// the text layer is effectively empty, meaning the batch is a raw scan
// and needs OCR. Mirrors the empty-sample heuristic used for deciding
// OCR fallback on ingested documents.
func looksScanned(pages []string, minChars int) bool {
	if len(pages) == 0 {
		return true
	}

	samples := []int{0, min(4, len(pages)-1), min(10, len(pages)-1)}
	if len(samples) > sampleLimit {
		samples = samples[:sampleLimit]
	}

	empty := 0
	seen := map[int]bool{}
	total := 0
	for _, idx := range samples {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		total++
		if len(strings.TrimSpace(pages[idx])) < minChars {
			empty++
		}
	}
	return total > 0 && empty > 0 && empty >= total-1
}

// Fallback tries the text layer first and switches to OCR when the
// batch looks scanned
type Fallback struct {
	textLayer Provider
	ocr       Provider
	minChars  int
	logger    *zap.Logger
}

// NewFallback creates a text-layer provider with OCR fallback. The ocr
// provider may be nil, in which case scanned batches fail with a clear
// error instead of returning empty pages.
func NewFallback(textLayer, ocr Provider, minChars int, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minChars <= 0 {
		minChars = 50
	}
	return &Fallback{textLayer: textLayer, ocr: ocr, minChars: minChars, logger: logger}
}

// PageTexts returns the batch's page texts, preferring the embedded text
// layer and falling back to OCR for scanned batches
func (f *Fallback) PageTexts(ctx context.Context, source string) ([]string, error) {
	pages, err := f.textLayer.PageTexts(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("text layer: %w", err)
	}

	if !looksScanned(pages, f.minChars) {
		f.logger.Debug("using embedded text layer",
			zap.String("source", source),
			zap.Int("pages", len(pages)))
		return pages, nil
	}

	if f.ocr == nil {
		return nil, fmt.Errorf("%s appears to be a raw scan and OCR is disabled: %w", source, ErrNoText)
	}

	f.logger.Info("batch looks scanned, switching to OCR",
		zap.String("source", source),
		zap.Int("pages", len(pages)))

	ocrPages, err := f.ocr.PageTexts(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	return ocrPages, nil
}

// Validate checks the fatal-condition contract: at least one page must
// carry text
func Validate(pages []string) error {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return nil
		}
	}
	return ErrNoText
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
