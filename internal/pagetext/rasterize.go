package pagetext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// Poppler rasterizes PDF pages by shelling out to pdftoppm. Requires
// poppler-utils on the host, same as the deployment's scan intake box.
type Poppler struct {
	dpi int
}

// NewPoppler creates a pdftoppm-backed rasterizer
func NewPoppler(dpi int) *Poppler {
	if dpi <= 0 {
		dpi = 300
	}
	return &Poppler{dpi: dpi}
}

// PageCount reads the page count from the PDF structure
func (p *Poppler) PageCount(ctx context.Context, source string) (int, error) {
	f, reader, err := pdf.Open(source)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()
	return reader.NumPage(), nil
}

// RenderPage renders one 0-based page to PNG bytes
func (p *Poppler) RenderPage(ctx context.Context, source string, page int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "mailroom-raster-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	// pdftoppm numbers pages from 1
	num := page + 1
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", fmt.Sprint(p.dpi),
		"-f", fmt.Sprint(num),
		"-l", fmt.Sprint(num),
		source, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", num, err, out)
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm page %d produced no image", num)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return data, nil
}
