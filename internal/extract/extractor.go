// Package extract runs the pattern catalog against a document's pages to
// produce raw identifier candidates.
package extract

import (
	"regexp"
	"strings"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Extractor pulls identifier candidates out of a document's page texts
type Extractor struct {
	docType *catalog.DocumentType
}

// New creates an extractor for one document type
func New(docType *catalog.DocumentType) *Extractor {
	return &Extractor{docType: docType}
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// Candidates scans the pages of one document (already sliced to its page
// range) and returns candidates ordered by pattern priority rank, not
// page order. For each pattern only its configured relative offsets are
// scanned; when a pattern matches several times on a page the last
// occurrence wins, since later text is more likely a final restatement
// near a signature block.
func (e *Extractor) Candidates(pages []model.Page) []model.Candidate {
	var out []model.Candidate

	for _, pat := range e.docType.Patterns {
		offsets := pat.PageOffsets
		if offsets == nil {
			// Comprehensive scan: every page of the document
			offsets = make([]int, len(pages))
			for i := range pages {
				offsets[i] = i
			}
		}

		for _, off := range offsets {
			if off < 0 || off >= len(pages) {
				continue
			}
			raw, ok := e.lastMatch(pat, pages[off].Text)
			if !ok {
				continue
			}
			out = append(out, model.Candidate{
				Raw:        raw,
				PatternID:  pat.ID,
				PageOffset: off,
				Priority:   pat.Priority,
			})
		}
	}

	return out
}

// lastMatch returns the cleaned capture of the last plausible match of
// pat on the page text
func (e *Extractor) lastMatch(pat catalog.Pattern, text string) (string, bool) {
	matches := pat.Regex.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if len(matches[i]) < 2 {
			continue
		}
		cleaned := Clean(matches[i][1])
		if cleaned == "" {
			continue
		}
		// Shape pre-filter: drop matches too short or long to be a
		// plausible identifier before correction logic ever sees them
		if !pat.Plausible(cleaned, e.docType.Shape) {
			continue
		}
		return cleaned, true
	}
	return "", false
}

// Clean normalizes a raw capture: uppercased with every character outside
// [A-Z0-9] removed
func Clean(raw string) string {
	return nonAlnum.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "")
}
