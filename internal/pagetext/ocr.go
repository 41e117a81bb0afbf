package pagetext

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/virtualmailroom/mailroom/internal/model"
)

// Rasterizer renders PDF pages to images for OCR. Page rasterization is
// a rendering primitive outside this engine; callers plug in whatever
// renderer their deployment ships.
type Rasterizer interface {
	// PageCount returns the number of pages in the source PDF
	PageCount(ctx context.Context, source string) (int, error)
	// RenderPage renders one 0-based page to PNG bytes
	RenderPage(ctx context.Context, source string, page int) ([]byte, error)
}

// OCR recognizes page text with a local Tesseract engine, rate-limited
// so a large batch does not saturate the host
type OCR struct {
	rasterizer Rasterizer
	limiter    *rate.Limiter
	languages  []string
	tessdata   string
	logger     *zap.Logger
}

// NewOCR creates an OCR provider over the given rasterizer
func NewOCR(rasterizer Rasterizer, cfg model.OCRConfig, logger *zap.Logger) *OCR {
	if logger == nil {
		logger = zap.NewNop()
	}
	pps := cfg.PagesPerSecond
	if pps <= 0 {
		pps = 2.0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &OCR{
		rasterizer: rasterizer,
		limiter:    rate.NewLimiter(rate.Limit(pps), burst),
		languages:  languages,
		tessdata:   cfg.TessdataDir,
		logger:     logger,
	}
}

// PageTexts OCRs every page of the source PDF in page order
func (o *OCR) PageTexts(ctx context.Context, source string) ([]string, error) {
	total, err := o.rasterizer.PageCount(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("page count %s: %w", source, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.languages...); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if o.tessdata != "" {
		if err := client.SetTessdataPrefix(o.tessdata); err != nil {
			return nil, fmt.Errorf("set tessdata dir: %w", err)
		}
	}

	pages := make([]string, 0, total)
	for num := 0; num < total; num++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		text, err := o.recognizePage(ctx, client, source, num)
		if err != nil {
			o.logger.Warn("ocr failed for page",
				zap.String("source", source),
				zap.Int("page", num),
				zap.Error(err))
			text = ""
		}
		pages = append(pages, text)
	}

	o.logger.Info("ocr complete",
		zap.String("source", source),
		zap.Int("pages", total))
	return pages, nil
}

// recognizePage renders one page and runs recognition on it
func (o *OCR) recognizePage(ctx context.Context, client *gosseract.Client, source string, page int) (string, error) {
	img, err := o.rasterizer.RenderPage(ctx, source, page)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
