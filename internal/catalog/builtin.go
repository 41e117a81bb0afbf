package catalog

import "regexp"

// firmShape is the firm file number shape shared by the built-in types:
// a one or two letter prefix from the known families followed by digits,
// eight characters when complete.
var firmShape = Shape{
	Prefixes:   []string{"L", "J", "Y", "G", "JM", "EF"},
	MinLength:  7,
	MaxLength:  8,
	FullLength: 8,
}

// firmCorrections are the character-confusion repairs for firm file
// numbers. Position-0 rules resolve the leading letter the recognizer
// misread as a digit; the position-1 rule resolves a second-character
// confusion once a valid leading letter is in place.
var firmCorrections = []CorrectionRule{
	{ID: "lead-1-L", Position: 0, Find: regexp.MustCompile(`^1(\d{7})$`), Rewrite: "L$1"},
	{ID: "lead-I-L", Position: 0, Find: regexp.MustCompile(`^I(\d{7})$`), Rewrite: "L$1"},
	{ID: "lead-3-J", Position: 0, Find: regexp.MustCompile(`^3(\d{7})$`), Rewrite: "J$1"},
	{ID: "lead-6-G", Position: 0, Find: regexp.MustCompile(`^6(\d{7})$`), Rewrite: "G$1"},
	{ID: "lead-0-G", Position: 0, Find: regexp.MustCompile(`^0(\d{7})$`), Rewrite: "G$1"},
	{ID: "second-L-1", Position: 1, Find: regexp.MustCompile(`^([A-Z])L(\d{6})$`), Rewrite: "${1}1${2}"},
	{ID: "pad-trailing-zero", Position: 6, Find: regexp.MustCompile(`^L(\d{5})$`), Rewrite: "L${1}0"},
}

// Builtin returns the catalog of built-in document types
func Builtin() *Catalog {
	c := New()
	c.Register(newLTDType())
	c.Register(newISType())
	return c
}

// newLTDType describes collection letters (LTD): short fixed-length
// documents whose file number sits on the first page after one of several
// label variants. NJ batches run one page per letter, NY two; the fixed
// page count is overridable from the CLI.
func newLTDType() *DocumentType {
	return &DocumentType{
		Name:        "LTD",
		Description: "Collection letter (fixed pages per document)",
		Boundary: BoundaryPolicy{
			Kind:      BoundaryFixed,
			PageCount: 2,
		},
		Shape: firmShape,
		Patterns: []Pattern{
			{ID: "our-file-number", Priority: 1, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)Our\s+File\s+Number[.:]?\s*([A-Z0-9]{6,8})`)},
			{ID: "file-number", Priority: 2, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)File\s+Number[.:]?\s*([A-Z0-9]{6,8})`)},
			{ID: "file-no", Priority: 3, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)File\s+No[.:]?\s*([A-Z0-9]{6,8})`)},
			{ID: "file-hash", Priority: 4, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)File\s*#[.:]?\s*([A-Z0-9]{6,8})`)},
			{ID: "case-number", Priority: 5, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)Case\s+N(?:umber|o)[.:]?\s*([A-Z0-9]{6,8})`)},
			{ID: "matter-hash", Priority: 6, PageOffsets: []int{0},
				Regex: regexp.MustCompile(`(?im)Matter\s*#[.:]?\s*([A-Z0-9]{6,8})`)},
		},
		Corrections: firmCorrections,
		Fingerprints: []Fingerprint{
			{Marker: "our file number:", Weight: 0.5},
			{Marker: "file number:", Weight: 0.5},
			{Marker: "notice of", Weight: 0.5},
			{Marker: "legal notice", Weight: 0.5},
			{Marker: "to:", Weight: 0.5},
		},
		Naming: TypeFirst,
	}
}

// newISType describes Information Subpoenas with Restraining Notice:
// marker-delimited documents of around seven pages whose firm file number
// normally sits on the second page, near the attorney block, and is often
// restated near the signature block on later pages.
func newISType() *DocumentType {
	return &DocumentType{
		Name:        "IS",
		Description: "Information subpoena with restraining notice (marker delimited)",
		Boundary: BoundaryPolicy{
			Kind:     BoundaryVariable,
			MinPages: 5,
			MaxPages: 9,
			StartMarkers: []string{
				"INFORMATION SUBPOENA WITH RESTRAINING NOTICE",
				// Partial marker for line-break and OCR dropout cases
				"INFORMATION SUBPOENA WITH",
			},
			ContinuationMarkers: []string{
				"EXEMPTION CLAIM FORM",
			},
		},
		Shape: firmShape,
		Patterns: []Pattern{
			{ID: "firm-file-no", Priority: 1, PageOffsets: []int{1},
				Regex: regexp.MustCompile(`(?im)Firm\s+File\s+No[.:]?\s*([A-Z]{0,2}\d{6,8})`)},
			{ID: "file-no-p2", Priority: 2, PageOffsets: []int{1, 0, 2},
				Regex: regexp.MustCompile(`(?im)File\s+N(?:o|umber)[.:]?\s*([A-Z]{0,2}\d{6,8})`)},
			// The label line is often cut at the right margin; keep short
			// fragments so the reconciler can repair them against a full
			// restatement elsewhere in the document.
			{ID: "file-no-eol", Priority: 3, PageOffsets: []int{1}, MinLength: 2,
				Regex: regexp.MustCompile(`(?im)File\s+No[.:]?\s*([A-Z]{0,2}\d{0,5})\s*$`)},
			{ID: "attorney-file-no", Priority: 4, PageOffsets: nil,
				Regex: regexp.MustCompile(`(?im)(?:Our|Attorney|Client)\s+File\s+No[.:]?\s*([A-Z]{0,2}\d{6,8})`)},
			{ID: "account-number", Priority: 5, PageOffsets: nil,
				Regex: regexp.MustCompile(`(?im)Account\s+N(?:umber|o)[.:]?\s*([A-Z]{0,2}\d{6,8})`)},
			{ID: "file-hash", Priority: 6, PageOffsets: nil,
				Regex: regexp.MustCompile(`(?im)(?:File|Firm)\s*#\s*([A-Z]{0,2}\d{6,8})`)},
		},
		Corrections: firmCorrections,
		Fingerprints: []Fingerprint{
			{Marker: "information subpoena with restraining notice", Weight: 1.0},
			{Marker: "exemption claim form", Weight: 0.3},
			{Marker: "file no.", Weight: 0.3},
		},
		Naming: IDFirst,
	}
}
