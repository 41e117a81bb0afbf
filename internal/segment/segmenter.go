// Package segment partitions a batch's ordered page sequence into
// document page ranges according to the type's boundary policy.
package segment

import (
	"fmt"
	"strings"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Segment is one document-sized page range plus its anomaly state
type Segment struct {
	Range         model.PageRange // Over the non-blank page sequence
	Anomaly       bool
	AnomalyDetail string
}

// Result is the outcome of segmenting one batch
type Result struct {
	Segments   []Segment
	Pages      []model.Page // Non-blank pages the ranges index into
	BlankPages []int        // Original indices removed before grouping, for audit
}

// Segmenter groups pages into documents using a boundary policy
type Segmenter struct {
	policy catalog.BoundaryPolicy
}

// New creates a segmenter for the given boundary policy
func New(policy catalog.BoundaryPolicy) *Segmenter {
	return &Segmenter{policy: policy}
}

// Split partitions the batch into ordered, non-overlapping page ranges
// covering every non-blank page exactly once. Blank pages are removed
// from the sequence before grouping and recorded for audit.
func (s *Segmenter) Split(batch *model.Batch) (*Result, error) {
	res := &Result{
		Pages:      batch.NonBlank(),
		BlankPages: batch.RemovedBlank(),
	}
	if len(res.Pages) == 0 {
		return res, nil
	}

	switch s.policy.Kind {
	case catalog.BoundaryFixed:
		s.splitFixed(res)
	case catalog.BoundaryMarker, catalog.BoundaryVariable:
		s.splitMarker(res)
	default:
		return nil, fmt.Errorf("unknown boundary policy %q", s.policy.Kind)
	}

	if s.policy.Kind == catalog.BoundaryVariable {
		s.checkBounds(res)
	}
	return res, nil
}

// splitFixed groups consecutive non-blank pages into fixed-size chunks.
// A short tail is emitted and flagged for manual review, never dropped
// or padded.
func (s *Segmenter) splitFixed(res *Result) {
	n := s.policy.PageCount
	if n <= 0 {
		n = 1
	}

	for start := 0; start < len(res.Pages); start += n {
		end := start + n
		if end > len(res.Pages) {
			end = len(res.Pages)
		}
		seg := Segment{Range: model.PageRange{Start: start, End: end}}
		if end-start < n {
			seg.Anomaly = true
			seg.AnomalyDetail = fmt.Sprintf("short tail: %d of %d pages", end-start, n)
		}
		res.Segments = append(res.Segments, seg)
	}
}

// splitMarker opens a new document at each page containing a start marker.
// Continuation-marker pages (ancillary forms) never open a document.
// Pages before the first marker form an anomalous leading fragment so the
// ranges still cover the whole batch.
func (s *Segmenter) splitMarker(res *Result) {
	var starts []int
	for i, page := range res.Pages {
		if s.isStart(page.Text) {
			starts = append(starts, i)
		}
	}

	if len(starts) == 0 {
		res.Segments = append(res.Segments, Segment{
			Range:         model.PageRange{Start: 0, End: len(res.Pages)},
			Anomaly:       true,
			AnomalyDetail: "no start marker found in batch",
		})
		return
	}

	if starts[0] > 0 {
		// Content before the first marker: kept and flagged rather than
		// dropped, so ranges still cover the batch
		res.Segments = append(res.Segments, Segment{
			Range:         model.PageRange{Start: 0, End: starts[0]},
			Anomaly:       true,
			AnomalyDetail: "pages before first start marker",
		})
	}

	for k, start := range starts {
		end := len(res.Pages)
		if k+1 < len(starts) {
			end = starts[k+1]
		}
		res.Segments = append(res.Segments, Segment{Range: model.PageRange{Start: start, End: end}})
	}
}

// checkBounds flags variable-policy segments whose size falls outside
// [MinPages,MaxPages]. Violations are anomalies, not fatal errors.
func (s *Segmenter) checkBounds(res *Result) {
	for i := range res.Segments {
		n := res.Segments[i].Range.Len()
		if s.policy.MinPages > 0 && n < s.policy.MinPages {
			res.Segments[i].Anomaly = true
			res.Segments[i].AnomalyDetail = fmt.Sprintf("%d pages, below minimum %d", n, s.policy.MinPages)
		}
		if s.policy.MaxPages > 0 && n > s.policy.MaxPages {
			res.Segments[i].Anomaly = true
			res.Segments[i].AnomalyDetail = fmt.Sprintf("%d pages, above maximum %d", n, s.policy.MaxPages)
		}
	}
}

// isStart reports whether a page opens a new document: it contains a
// start marker and is not an ancillary continuation page
func (s *Segmenter) isStart(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range s.policy.ContinuationMarkers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return false
		}
	}
	for _, marker := range s.policy.StartMarkers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}
