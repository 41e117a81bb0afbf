package model

// UnknownID is the sentinel identifier for documents whose file number
// could not be determined. It is reported as-is, never replaced by a guess.
const UnknownID = "UNKNOWN"

// UnknownReason distinguishes why a document resolved to UnknownID
type UnknownReason string

const (
	// ReasonNone means the document resolved to a real identifier
	ReasonNone UnknownReason = ""
	// ReasonNoCandidates means no pattern produced any candidate at all
	ReasonNoCandidates UnknownReason = "extraction_failure"
	// ReasonValidationFailed means candidates existed but none survived
	// shape validation even after correction
	ReasonValidationFailed UnknownReason = "validation_failure"
)

// Page is one page of a scanned batch
type Page struct {
	Index int    `json:"index"` // 0-based position in the source PDF
	Text  string `json:"-"`     // OCR / text-layer output for the page
	Blank bool   `json:"blank"` // Computed once at ingest, never recomputed
}

// Batch is the ordered page sequence for one input PDF.
// Immutable once the text provider has filled it in.
type Batch struct {
	Source string // Source file path (for audit, cache keys)
	Pages  []Page
}

// NonBlank returns the pages that survived blank filtering, in order.
// The returned pages retain their original indices.
func (b *Batch) NonBlank() []Page {
	pages := make([]Page, 0, len(b.Pages))
	for _, p := range b.Pages {
		if !p.Blank {
			pages = append(pages, p)
		}
	}
	return pages
}

// RemovedBlank returns the original indices of pages dropped as blank
func (b *Batch) RemovedBlank() []int {
	var removed []int
	for _, p := range b.Pages {
		if p.Blank {
			removed = append(removed, p.Index)
		}
	}
	return removed
}

// PageRange is a half-open [Start,End) range over the non-blank page
// sequence of a batch
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of pages in the range
func (r PageRange) Len() int {
	return r.End - r.Start
}

// Candidate is a raw identifier string pulled from one page by one pattern.
// Ephemeral: scoped to a single document's extraction pass.
type Candidate struct {
	Raw        string `json:"raw"`         // As extracted (cleaned, uppercased)
	PatternID  string `json:"pattern_id"`  // Which catalog pattern matched
	PageOffset int    `json:"page_offset"` // Relative page within the document
	Priority   int    `json:"priority"`    // Lower rank = higher trust
}

// Correction records one character substitution applied to a candidate
type Correction struct {
	Position    int    `json:"position"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	RuleID      string `json:"rule_id"`
}

// Document is a segmented logical document within a batch.
// Created by the segmenter; the corrector, reconciler and duplicate
// resolver mutate it in that order; immutable thereafter.
type Document struct {
	Type  string    `json:"document_type"`
	Range PageRange `json:"range"`

	Identifier       string        `json:"identifier"` // UnknownID until resolved
	UnknownReason    UnknownReason `json:"unknown_reason,omitempty"`
	TruncationRepair bool          `json:"truncation_repair,omitempty"`

	Candidates    []Candidate  `json:"candidates,omitempty"` // Audit trail
	Corrections   []Correction `json:"corrections,omitempty"`
	BestRejected  string       `json:"best_rejected,omitempty"` // Retained on validation failure
	Anomaly       bool         `json:"anomaly"`
	AnomalyDetail string       `json:"anomaly_detail,omitempty"`

	OutputFile string `json:"output_file,omitempty"` // Assigned by the duplicate resolver
}

// Unknown reports whether the document failed to resolve an identifier
func (d *Document) Unknown() bool {
	return d.Identifier == UnknownID || d.Identifier == ""
}
