// Package correct applies context-aware character substitutions that
// repair systematic recognizer confusions in extracted identifiers.
package correct

import (
	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Corrector applies a type's correction rules to candidate values
type Corrector struct {
	shape catalog.Shape
	rules []catalog.CorrectionRule
}

// New creates a corrector from a document type's shape and rule table.
// Rules are expected pre-sorted by position (the catalog guarantees it):
// position-0 rules run first, so a position-1 rule sees the
// already-corrected leading character.
func New(docType *catalog.DocumentType) *Corrector {
	return &Corrector{shape: docType.Shape, rules: docType.Corrections}
}

// Apply runs the rule table over value in fixed order and returns the
// corrected value plus the corrections applied, for provenance.
//
// A rule fires only when it moves the value from invalid to valid under
// the shape validator. An already-valid value is never rewritten, so
// correction can never degrade a good read.
func (c *Corrector) Apply(value string) (string, []model.Correction) {
	var applied []model.Correction

	current := value
	for _, rule := range c.rules {
		if c.shape.Valid(current) {
			break
		}
		if !rule.Find.MatchString(current) {
			continue
		}
		candidate := rule.Find.ReplaceAllString(current, rule.Rewrite)
		if candidate == current || !c.shape.Valid(candidate) {
			continue
		}
		applied = append(applied, model.Correction{
			Position:    rule.Position,
			Original:    charAt(current, rule.Position),
			Replacement: charAt(candidate, rule.Position),
			RuleID:      rule.ID,
		})
		current = candidate
	}

	return current, applied
}

// charAt returns the single character at pos, or "" past the end (rules
// that append report the inserted character instead)
func charAt(s string, pos int) string {
	if pos < 0 || pos >= len(s) {
		return ""
	}
	return string(s[pos])
}
