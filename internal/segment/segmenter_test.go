package segment

import (
	"fmt"
	"testing"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
)

func makeBatch(texts ...string) *model.Batch {
	blanks := MarkBlanks(texts)
	b := &model.Batch{Source: "test.pdf"}
	for i, text := range texts {
		b.Pages = append(b.Pages, model.Page{Index: i, Text: text, Blank: blanks[i]})
	}
	return b
}

func pageText(i int) string {
	return fmt.Sprintf("page %d body text long enough to not be blank", i)
}

// coverage checks that the segments tile the non-blank sequence exactly
func assertCoverage(t *testing.T, res *Result) {
	t.Helper()
	next := 0
	for i, seg := range res.Segments {
		if seg.Range.Start != next {
			t.Fatalf("segment %d starts at %d, want %d", i, seg.Range.Start, next)
		}
		if seg.Range.End <= seg.Range.Start {
			t.Fatalf("segment %d is empty: %+v", i, seg.Range)
		}
		next = seg.Range.End
	}
	if next != len(res.Pages) {
		t.Fatalf("segments end at %d, want %d", next, len(res.Pages))
	}
}

func TestSplitFixedEvenBatch(t *testing.T) {
	texts := make([]string, 70)
	for i := range texts {
		texts[i] = pageText(i)
	}

	s := New(catalog.BoundaryPolicy{Kind: catalog.BoundaryFixed, PageCount: 7})
	res, err := s.Split(makeBatch(texts...))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 10 {
		t.Fatalf("expected 10 documents, got %d", len(res.Segments))
	}
	assertCoverage(t, res)
	for i, seg := range res.Segments {
		if seg.Range.Len() != 7 {
			t.Errorf("segment %d has %d pages", i, seg.Range.Len())
		}
		if seg.Anomaly {
			t.Errorf("segment %d unexpectedly anomalous: %s", i, seg.AnomalyDetail)
		}
	}
}

func TestSplitFixedShortTail(t *testing.T) {
	texts := make([]string, 5)
	for i := range texts {
		texts[i] = pageText(i)
	}

	s := New(catalog.BoundaryPolicy{Kind: catalog.BoundaryFixed, PageCount: 2})
	res, err := s.Split(makeBatch(texts...))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(res.Segments))
	}
	assertCoverage(t, res)

	tail := res.Segments[2]
	if !tail.Anomaly {
		t.Error("short tail should be flagged, not dropped")
	}
	if tail.Range.Len() != 1 {
		t.Errorf("tail has %d pages", tail.Range.Len())
	}
}

func TestSplitFixedRemovesBlankPages(t *testing.T) {
	// Blank page sits between two one-page documents
	s := New(catalog.BoundaryPolicy{Kind: catalog.BoundaryFixed, PageCount: 1})
	res, err := s.Split(makeBatch(pageText(0), "", pageText(2)))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if len(res.BlankPages) != 1 || res.BlankPages[0] != 1 {
		t.Errorf("blank pages = %v", res.BlankPages)
	}
	// Ranges index the compacted sequence; original indices survive on
	// the pages themselves
	if res.Pages[1].Index != 2 {
		t.Errorf("second non-blank page has original index %d", res.Pages[1].Index)
	}
}

func markerPolicy() catalog.BoundaryPolicy {
	return catalog.BoundaryPolicy{
		Kind:                catalog.BoundaryVariable,
		MinPages:            2,
		MaxPages:            4,
		StartMarkers:        []string{"INFORMATION SUBPOENA WITH RESTRAINING NOTICE"},
		ContinuationMarkers: []string{"EXEMPTION CLAIM FORM"},
	}
}

func TestSplitMarker(t *testing.T) {
	start := "INFORMATION SUBPOENA WITH RESTRAINING NOTICE\nSupreme Court"
	s := New(markerPolicy())
	res, err := s.Split(makeBatch(
		start, pageText(1), pageText(2),
		start, pageText(4),
	))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(res.Segments))
	}
	assertCoverage(t, res)
	if res.Segments[0].Range.Len() != 3 || res.Segments[1].Range.Len() != 2 {
		t.Errorf("segment sizes = %d, %d", res.Segments[0].Range.Len(), res.Segments[1].Range.Len())
	}
}

func TestSplitMarkerContinuationNeverStarts(t *testing.T) {
	start := "INFORMATION SUBPOENA WITH RESTRAINING NOTICE"
	// The exemption form restates the subpoena title but must not open
	// a new document
	continuation := "EXEMPTION CLAIM FORM\nINFORMATION SUBPOENA WITH RESTRAINING NOTICE"

	s := New(markerPolicy())
	res, err := s.Split(makeBatch(start, pageText(1), continuation, pageText(3)))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 document, got %d", len(res.Segments))
	}
	if res.Segments[0].Range.Len() != 4 {
		t.Errorf("document has %d pages", res.Segments[0].Range.Len())
	}
}

func TestSplitMarkerNoStartMarker(t *testing.T) {
	s := New(markerPolicy())
	res, err := s.Split(makeBatch(pageText(0), pageText(1)))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 1 {
		t.Fatalf("expected single anomalous segment, got %d", len(res.Segments))
	}
	if !res.Segments[0].Anomaly {
		t.Error("markerless batch should be flagged")
	}
	assertCoverage(t, res)
}

func TestSplitMarkerLeadingFragment(t *testing.T) {
	start := "INFORMATION SUBPOENA WITH RESTRAINING NOTICE"
	s := New(markerPolicy())
	res, err := s.Split(makeBatch(pageText(0), start, pageText(2)))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected fragment + document, got %d segments", len(res.Segments))
	}
	assertCoverage(t, res)
	if !res.Segments[0].Anomaly {
		t.Error("pages before the first marker should be flagged")
	}
}

func TestSplitVariableBounds(t *testing.T) {
	start := "INFORMATION SUBPOENA WITH RESTRAINING NOTICE"
	s := New(markerPolicy())
	res, err := s.Split(makeBatch(
		start, // 1 page: below MinPages 2
		start, pageText(2), pageText(3), pageText(4), pageText(5), // 5 pages: above MaxPages 4
	))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(res.Segments))
	}
	for i, seg := range res.Segments {
		if !seg.Anomaly {
			t.Errorf("segment %d should violate page bounds: %+v", i, seg.Range)
		}
	}
}

func TestSplitEmptyBatch(t *testing.T) {
	s := New(catalog.BoundaryPolicy{Kind: catalog.BoundaryFixed, PageCount: 2})
	res, err := s.Split(makeBatch("", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 0 {
		t.Errorf("all-blank batch produced %d segments", len(res.Segments))
	}
	if len(res.BlankPages) != 2 {
		t.Errorf("blank pages = %v", res.BlankPages)
	}
}
