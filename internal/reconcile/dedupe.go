package reconcile

import (
	"fmt"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Deduplicator assigns output names within one batch run, appending a
// stable suffix to identifier collisions. It is a sequential final
// reduction: callers must feed documents in original page position order,
// after every per-document identifier is resolved.
type Deduplicator struct {
	docType    *catalog.DocumentType
	seen       map[string]int
	unknownSeq int
}

// NewDeduplicator creates a deduplicator for one batch run
func NewDeduplicator(docType *catalog.DocumentType) *Deduplicator {
	return &Deduplicator{docType: docType, seen: make(map[string]int)}
}

// Assign sets the document's output file name. The first occurrence of
// an identifier keeps the bare name; every later occurrence gets a
// deterministic _01, _02, ... suffix. Unknown documents are never
// deduplicated against each other; each gets the next running sequence
// number instead.
func (d *Deduplicator) Assign(doc *model.Document) {
	if doc.Unknown() {
		d.unknownSeq++
		doc.OutputFile = d.docType.UnknownFileName(d.unknownSeq)
		return
	}

	n := d.seen[doc.Identifier]
	d.seen[doc.Identifier] = n + 1

	identifier := doc.Identifier
	if n > 0 {
		identifier = fmt.Sprintf("%s_%02d", identifier, n)
	}
	doc.OutputFile = d.docType.FileName(identifier)
}
