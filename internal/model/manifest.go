package model

import "time"

// Manifest is the machine-readable summary written once per batch run.
// No manifest is written until every document in the batch is resolved.
type Manifest struct {
	ProcessedAt    time.Time `json:"processed_at"`
	SourceFile     string    `json:"source_file"`
	DocumentType   string    `json:"document_type"`
	TotalDocuments int       `json:"total_documents"` // Must equal len(Documents)
	BlankPages     []int     `json:"blank_pages_removed,omitempty"`

	Documents []ManifestRecord `json:"documents"`
}

// ManifestRecord is one document's entry in the manifest
type ManifestRecord struct {
	OutputFile    string        `json:"output_file"`
	DocumentType  string        `json:"document_type"`
	Identifier    string        `json:"identifier"` // UnknownID when unresolved
	Unknown       bool          `json:"unknown"`
	UnknownReason UnknownReason `json:"unknown_reason,omitempty"`

	Pages     string `json:"pages"` // 1-based "first-last" over source pages
	PageCount int    `json:"page_count"`

	Corrections      []Correction `json:"corrections,omitempty"`
	TruncationRepair bool         `json:"truncation_repair,omitempty"`
	BestRejected     string       `json:"best_rejected,omitempty"`
	RawCandidates    []string     `json:"raw_candidates,omitempty"`

	Anomaly       bool   `json:"segmentation_anomaly"`
	AnomalyDetail string `json:"anomaly_detail,omitempty"`

	Assist *AssistNote `json:"assist,omitempty"` // Optional AI review, advisory only
}

// AssistNote is an advisory suggestion from the AI reviewer. It never
// replaces the resolved identifier; it lands in the audit trail only.
type AssistNote struct {
	Suggestion string `json:"suggestion,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
	Model      string `json:"model,omitempty"`
}
