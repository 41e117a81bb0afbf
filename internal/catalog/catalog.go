// Package catalog holds the declarative per-type configuration that drives
// segmentation, extraction and correction: boundary policies, ranked
// extraction patterns, shape validators and correction rules. Document-type
// behavior is data selected through a lookup, not branching in components.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// BoundaryKind selects how document boundaries are found within a batch
type BoundaryKind string

const (
	// BoundaryFixed partitions non-blank pages into fixed-size groups
	BoundaryFixed BoundaryKind = "fixed"
	// BoundaryMarker starts a new document at each page containing a start marker
	BoundaryMarker BoundaryKind = "marker"
	// BoundaryVariable is marker scanning with page-count bounds validation
	BoundaryVariable BoundaryKind = "variable"
)

// BoundaryPolicy describes where one logical document ends and the next begins
type BoundaryPolicy struct {
	Kind      BoundaryKind `yaml:"kind"`
	PageCount int          `yaml:"page_count,omitempty"` // Fixed: pages per document
	MinPages  int          `yaml:"min_pages,omitempty"`  // Variable: inclusive lower bound
	MaxPages  int          `yaml:"max_pages,omitempty"`  // Variable: inclusive upper bound

	// Case-insensitive substring markers for marker/variable policies
	StartMarkers        []string `yaml:"start_markers,omitempty"`
	ContinuationMarkers []string `yaml:"continuation_markers,omitempty"` // Ancillary pages that never open a document
}

// Shape validates the structural form of an identifier: an allowed letter
// prefix followed by digits, within length bounds
type Shape struct {
	Prefixes   []string `yaml:"prefixes"`    // Allowed letter prefixes (1-2 letters)
	MinLength  int      `yaml:"min_length"`  // Total length lower bound
	MaxLength  int      `yaml:"max_length"`  // Total length upper bound
	FullLength int      `yaml:"full_length"` // Expected length of a complete identifier
}

// Valid reports whether value satisfies the shape
func (s Shape) Valid(value string) bool {
	prefix, digits, ok := splitIdentifier(value)
	if !ok {
		return false
	}
	if len(value) < s.MinLength || len(value) > s.MaxLength {
		return false
	}
	if digits == "" {
		return false
	}
	for _, p := range s.Prefixes {
		if prefix == p {
			return true
		}
	}
	return false
}

// Complete reports whether value has the full expected length.
// A valid but shorter value is treated as possibly truncated.
func (s Shape) Complete(value string) bool {
	return len(value) == s.FullLength
}

// splitIdentifier splits a cleaned value into its leading letters and the
// digit remainder. ok is false when the value has any other structure.
func splitIdentifier(value string) (prefix, digits string, ok bool) {
	i := 0
	for i < len(value) && value[i] >= 'A' && value[i] <= 'Z' {
		i++
	}
	if i > 2 {
		return "", "", false
	}
	for _, c := range value[i:] {
		if c < '0' || c > '9' {
			return "", "", false
		}
	}
	return value[:i], value[i:], true
}

// Pattern is one extraction rule: a regex with a single capture group,
// scoped to relative page offsets within a document, with a strict
// priority rank (lower rank = higher trust)
type Pattern struct {
	ID          string
	Regex       *regexp.Regexp
	PageOffsets []int // Relative offsets within the document; nil = every page
	Priority    int

	// Plausibility bounds applied before a match becomes a candidate.
	// Zero values fall back to the type shape's length bounds. Patterns
	// prone to truncation set a lower MinLength so short fragments
	// survive into reconciliation.
	MinLength int
	MaxLength int
}

// Plausible reports whether a cleaned match is structurally worth keeping
// as a candidate: leading letters (at most two) then digits, within the
// pattern's length bounds. This filters combinatorial noise before
// correction ever runs.
func (p Pattern) Plausible(value string, shape Shape) bool {
	if _, _, ok := splitIdentifier(value); !ok {
		return false
	}
	min, max := p.MinLength, p.MaxLength
	if min == 0 {
		min = shape.MinLength
	}
	if max == 0 {
		max = shape.MaxLength
	}
	return len(value) >= min && len(value) <= max
}

// CorrectionRule is a pure context-aware substitution: when Find matches
// the current value, the value is rewritten. Position records which
// character the rule repairs, for provenance and for rule ordering
// (position-0 rules run before position-1 rules).
type CorrectionRule struct {
	ID       string
	Position int
	Find     *regexp.Regexp
	Rewrite  string
}

// Fingerprint is a marker used for document type auto-detection
type Fingerprint struct {
	Marker string  `yaml:"marker"`
	Weight float64 `yaml:"weight"`
}

// NameOrder selects the output naming convention for a type
type NameOrder string

const (
	// TypeFirst names outputs {TYPE}_{IDENTIFIER}.pdf
	TypeFirst NameOrder = "type_first"
	// IDFirst names outputs {IDENTIFIER}_{TYPE}.pdf
	IDFirst NameOrder = "id_first"
)

// DocumentType bundles everything the pipeline needs to know about one
// kind of legal document
type DocumentType struct {
	Name         string
	Description  string
	Boundary     BoundaryPolicy
	Shape        Shape
	Patterns     []Pattern // Kept sorted by priority rank
	Corrections  []CorrectionRule
	Fingerprints []Fingerprint
	Naming       NameOrder
}

// FileName composes the output file name for a resolved identifier
func (t *DocumentType) FileName(identifier string) string {
	if t.Naming == IDFirst {
		return fmt.Sprintf("%s_%s.pdf", identifier, t.Name)
	}
	return fmt.Sprintf("%s_%s.pdf", t.Name, identifier)
}

// UnknownFileName composes the output file name for an unresolved document
func (t *DocumentType) UnknownFileName(seq int) string {
	return fmt.Sprintf("%s_UNKNOWN_%03d.pdf", t.Name, seq)
}

// Catalog is the registry of document types
type Catalog struct {
	types map[string]*DocumentType
	order []string
}

// New returns an empty catalog
func New() *Catalog {
	return &Catalog{types: make(map[string]*DocumentType)}
}

// Register adds or replaces a document type. Patterns are re-sorted by
// priority rank and correction rules by position so callers can list them
// in any order.
func (c *Catalog) Register(t *DocumentType) {
	sort.SliceStable(t.Patterns, func(i, j int) bool {
		return t.Patterns[i].Priority < t.Patterns[j].Priority
	})
	sort.SliceStable(t.Corrections, func(i, j int) bool {
		return t.Corrections[i].Position < t.Corrections[j].Position
	})
	name := strings.ToUpper(t.Name)
	if _, exists := c.types[name]; !exists {
		c.order = append(c.order, name)
	}
	c.types[name] = t
}

// Lookup returns the document type for a (case-insensitive) name
func (c *Catalog) Lookup(name string) (*DocumentType, error) {
	t, ok := c.types[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q (known: %s)", name, strings.Join(c.order, ", "))
	}
	return t, nil
}

// Types returns all registered types in registration order
func (c *Catalog) Types() []*DocumentType {
	out := make([]*DocumentType, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.types[name])
	}
	return out
}
