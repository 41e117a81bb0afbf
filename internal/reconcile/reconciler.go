// Package reconcile merges corrected candidates from multiple sources
// into one final identifier per document, and resolves identifier
// collisions across a batch.
package reconcile

import (
	"sort"
	"strings"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/correct"
	"github.com/virtualmailroom/mailroom/internal/model"
)

// Outcome is the reconciler's decision for one document
type Outcome struct {
	Identifier       string // model.UnknownID when nothing validated
	UnknownReason    model.UnknownReason
	TruncationRepair bool
	Corrections      []model.Correction
	BestRejected     string // Retained for human review on validation failure
}

// corrected is a candidate after the corrector has run
type corrected struct {
	value       string
	priority    int
	corrections []model.Correction
	valid       bool
}

// Reconciler resolves a document's candidates into a final identifier
type Reconciler struct {
	shape     catalog.Shape
	corrector *correct.Corrector
}

// New creates a reconciler for one document type
func New(docType *catalog.DocumentType) *Reconciler {
	return &Reconciler{
		shape:     docType.Shape,
		corrector: correct.New(docType),
	}
}

// Resolve picks the final identifier from the raw candidates.
//
// Priority is a trust ranking across sources, but completeness trumps
// priority when a prefix relationship can be established: an incomplete
// high-priority candidate is repaired from a longer lower-priority one
// that starts with the same characters, and the repair is recorded as
// such rather than as a plain substitution. When nothing validates the
// result is the UNKNOWN sentinel, reported rather than guessed.
func (r *Reconciler) Resolve(candidates []model.Candidate) Outcome {
	if len(candidates) == 0 {
		return Outcome{Identifier: model.UnknownID, UnknownReason: model.ReasonNoCandidates}
	}

	all := make([]corrected, 0, len(candidates))
	for _, cand := range candidates {
		value, corrections := r.corrector.Apply(cand.Raw)
		all = append(all, corrected{
			value:       value,
			priority:    cand.Priority,
			corrections: corrections,
			valid:       r.shape.Valid(value),
		})
	}
	// Stable: candidates arrive in pattern order, ties keep that order
	sort.SliceStable(all, func(i, j int) bool { return all[i].priority < all[j].priority })

	var valid []corrected
	for _, c := range all {
		if c.valid {
			valid = append(valid, c)
		}
	}

	if len(valid) == 0 {
		return Outcome{
			Identifier:    model.UnknownID,
			UnknownReason: model.ReasonValidationFailed,
			BestRejected:  bestRejected(all),
		}
	}

	top := valid[0]
	if r.shape.Complete(top.value) {
		out := Outcome{Identifier: top.value, Corrections: top.corrections}
		out.TruncationRepair = r.repairedFromFragment(all, top.value)
		return out
	}

	// Top candidate is valid but short of the full expected length:
	// possibly truncated. Prefer a longer, prefix-matching candidate
	// from a lower-trust source, complete ones first.
	if repaired, ok := r.findExtension(valid, top); ok {
		return Outcome{
			Identifier:       repaired.value,
			Corrections:      repaired.corrections,
			TruncationRepair: true,
		}
	}

	// Nothing longer shares the prefix: the short value still satisfies
	// the validator, so accept it as-is
	return Outcome{Identifier: top.value, Corrections: top.corrections}
}

// findExtension looks below top in the trust ranking for a longer value
// that begins with top's value. Complete extensions win over merely
// longer ones; within each class the higher-trust source wins (the slice
// is already in trust order).
func (r *Reconciler) findExtension(valid []corrected, top corrected) (corrected, bool) {
	var longer *corrected
	for i := 1; i < len(valid); i++ {
		c := valid[i]
		if len(c.value) <= len(top.value) || !strings.HasPrefix(c.value, top.value) {
			continue
		}
		if r.shape.Complete(c.value) {
			return c, true
		}
		if longer == nil {
			longer = &valid[i]
		}
	}
	if longer != nil {
		return *longer, true
	}
	return corrected{}, false
}

// repairedFromFragment reports whether a higher-trust candidate that
// failed validation is a proper prefix of the accepted value, meaning
// the accepted value effectively repaired a truncated read
func (r *Reconciler) repairedFromFragment(all []corrected, accepted string) bool {
	for _, c := range all {
		if c.valid {
			continue
		}
		if c.value != "" && c.value != accepted && strings.HasPrefix(accepted, c.value) {
			return true
		}
	}
	return false
}

// bestRejected picks the candidate worth keeping in the audit trail when
// validation fails everywhere: highest trust first, longest value as the
// tie-breaker
func bestRejected(all []corrected) string {
	best := ""
	bestPriority := 0
	for _, c := range all {
		if c.value == "" {
			continue
		}
		if best == "" || c.priority < bestPriority ||
			(c.priority == bestPriority && len(c.value) > len(best)) {
			best = c.value
			bestPriority = c.priority
		}
	}
	return best
}
