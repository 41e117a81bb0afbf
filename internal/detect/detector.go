// Package detect classifies a batch's document type by matching marker
// fingerprints against its first few pages. It is a best-effort
// classifier: a low-confidence result is an explicit state, never a
// silent guess.
package detect

import (
	"strings"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Confidence buckets for a detection result
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Result is the outcome of auto-detection
type Result struct {
	Type       string  `json:"type"` // Catalog type name, or "" when nothing matched
	Score      float64 `json:"score"`
	Confidence string  `json:"confidence"`
	Low        bool    `json:"low"` // Below threshold: caller must require an explicit type
}

// Detector scores catalog fingerprints against batch pages
type Detector struct {
	catalog       *catalog.Catalog
	maxPages      int
	minConfidence float64
}

// New creates a detector over the given catalog
func New(cat *catalog.Catalog, cfg model.DetectConfig) *Detector {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	return &Detector{catalog: cat, maxPages: maxPages, minConfidence: cfg.MinConfidence}
}

// Detect scores every catalog type's fingerprints against the first few
// pages and returns the best match with a normalized 0-1 score. The
// scoring function is deliberately coarse; anything under the configured
// threshold comes back flagged Low so the caller can demand an explicit
// type instead of trusting a weak signal.
func (d *Detector) Detect(batch *model.Batch) Result {
	pages := batch.NonBlank()
	if len(pages) > d.maxPages {
		pages = pages[:d.maxPages]
	}

	best := Result{Confidence: ConfidenceLow, Low: true}
	for _, t := range d.catalog.Types() {
		score := d.scoreType(t, pages)
		if score > best.Score {
			best.Type = t.Name
			best.Score = score
		}
	}

	best.Confidence = bucket(best.Score)
	best.Low = best.Score < d.minConfidence
	if best.Low {
		best.Confidence = ConfidenceLow
	}
	return best
}

// scoreType sums the weights of fingerprints found anywhere in the
// sampled pages, normalized by the total attainable weight. A marker
// counts once no matter how many pages repeat it.
func (d *Detector) scoreType(t *catalog.DocumentType, pages []model.Page) float64 {
	if len(t.Fingerprints) == 0 || len(pages) == 0 {
		return 0
	}

	var score, max float64
	for _, fp := range t.Fingerprints {
		max += fp.Weight
		marker := strings.ToLower(fp.Marker)
		for _, page := range pages {
			if strings.Contains(strings.ToLower(page.Text), marker) {
				score += fp.Weight
				break
			}
		}
	}
	if max == 0 {
		return 0
	}
	return score / max
}

func bucket(score float64) string {
	switch {
	case score >= 0.6:
		return ConfidenceHigh
	case score >= 0.35:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
