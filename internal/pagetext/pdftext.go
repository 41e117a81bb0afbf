package pagetext

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextLayer extracts per-page text from a PDF's embedded text layer
type TextLayer struct{}

// NewTextLayer creates a text-layer provider
func NewTextLayer() *TextLayer {
	return &TextLayer{}
}

// PageTexts reads every page's plain text in page order. Pages whose
// extraction fails yield an empty string rather than failing the batch;
// the scanned-batch heuristic and blank filtering downstream decide what
// to do with them.
func (t *TextLayer) PageTexts(ctx context.Context, source string) ([]string, error) {
	f, reader, err := pdf.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", source, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)

	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
