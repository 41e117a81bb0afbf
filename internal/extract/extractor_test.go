package extract

import (
	"testing"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

func ltdType(t *testing.T) *catalog.DocumentType {
	t.Helper()
	dt, err := catalog.Builtin().Lookup("LTD")
	if err != nil {
		t.Fatal(err)
	}
	return dt
}

func isType(t *testing.T) *catalog.DocumentType {
	t.Helper()
	dt, err := catalog.Builtin().Lookup("IS")
	if err != nil {
		t.Fatal(err)
	}
	return dt
}

func pages(texts ...string) []model.Page {
	out := make([]model.Page, len(texts))
	for i, text := range texts {
		out[i] = model.Page{Index: i, Text: text}
	}
	return out
}

func TestCandidatesFirstPageLabel(t *testing.T) {
	e := New(ltdType(t))
	cands := e.Candidates(pages("NOTICE\nOur File Number: L2401462\nDear Sir"))

	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	if cands[0].Raw != "L2401462" {
		t.Errorf("raw = %q", cands[0].Raw)
	}
	if cands[0].PatternID != "our-file-number" {
		t.Errorf("pattern = %q", cands[0].PatternID)
	}
	if cands[0].Priority != 1 {
		t.Errorf("priority = %d", cands[0].Priority)
	}
}

func TestCandidatesLastOccurrenceWins(t *testing.T) {
	// The closing restatement outranks an earlier reference on the
	// same page for the same pattern
	text := "File Number: L1111111\nbody\nFile Number: L2222222"
	e := New(ltdType(t))
	cands := e.Candidates(pages(text))

	for _, c := range cands {
		if c.PatternID == "file-number" && c.Raw != "L2222222" {
			t.Errorf("file-number candidate = %q, want last occurrence", c.Raw)
		}
	}
}

func TestCandidatesRespectPageOffsets(t *testing.T) {
	// LTD patterns only scan the first page of each document
	e := New(ltdType(t))
	cands := e.Candidates(pages("no label here at all", "Our File Number: L2401462"))
	if len(cands) != 0 {
		t.Errorf("expected no candidates from off-offset pages, got %+v", cands)
	}
}

func TestCandidatesComprehensivePatterns(t *testing.T) {
	// IS account-number has no offset list and scans every page
	e := New(isType(t))
	cands := e.Candidates(pages(
		"INFORMATION SUBPOENA WITH RESTRAINING NOTICE",
		"page two without labels",
		"page three",
		"Account Number: G2503406",
	))

	found := false
	for _, c := range cands {
		if c.PatternID == "account-number" && c.Raw == "G2503406" && c.PageOffset == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("account number not found on a later page: %+v", cands)
	}
}

func TestCandidatesKeepShortFragments(t *testing.T) {
	// A label cut at the line end still yields a fragment candidate for
	// the reconciler to repair
	e := New(isType(t))
	cands := e.Candidates(pages(
		"INFORMATION SUBPOENA WITH RESTRAINING NOTICE",
		"Firm File No. L2\nAttorney File No. L2402249",
	))

	var fragment, full bool
	for _, c := range cands {
		if c.Raw == "L2" {
			fragment = true
		}
		if c.Raw == "L2402249" {
			full = true
		}
	}
	if !fragment || !full {
		t.Errorf("fragment=%v full=%v candidates=%+v", fragment, full, cands)
	}
}

func TestCandidatesImplausibleDropped(t *testing.T) {
	// A word straying into the capture never becomes a candidate: more
	// than two leading letters fails the structural pre-filter
	e := New(ltdType(t))
	cands := e.Candidates(pages("File Number: PENDING1"))
	if len(cands) != 0 {
		t.Errorf("implausible match kept: %+v", cands)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" l2401462 ", "L2401462"},
		{"L-240 1462", "L2401462"},
		{"l2401462.", "L2401462"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
