package pipeline

import (
	"context"

	"github.com/virtualmailroom/mailroom/internal/model"
)

// Emitter copies a document's pages out of the source PDF into the
// output file the manifest names. Physical page copying is supplied by
// the caller; the pipeline itself only decides names and ranges.
type Emitter interface {
	Emit(ctx context.Context, source string, doc *model.Document) error
}

// NopEmitter names outputs without writing page data. Used when only
// the manifest is wanted, and in tests.
type NopEmitter struct{}

// Emit implements Emitter
func (NopEmitter) Emit(ctx context.Context, source string, doc *model.Document) error {
	return nil
}
