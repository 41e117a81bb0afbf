package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
	"github.com/virtualmailroom/mailroom/internal/pagetext"
)

// stubProvider serves canned page text per source path
type stubProvider struct {
	batches map[string][]string
}

func (s *stubProvider) PageTexts(ctx context.Context, source string) ([]string, error) {
	pages, ok := s.batches[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %s", source)
	}
	return pages, nil
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Concurrency.DocumentWorkers = 4
	cfg.Concurrency.FileWorkers = 2
	cfg.Cache.Enabled = false
	return cfg
}

func newTestPipeline(t *testing.T, batches map[string][]string) *Pipeline {
	t.Helper()
	return New(testConfig(), &stubProvider{batches: batches}, catalog.Builtin(), nil)
}

// letterBatch builds n fixed-size documents with a labeled first page
func letterBatch(docs, pagesPer int) []string {
	var pages []string
	for d := 0; d < docs; d++ {
		pages = append(pages, fmt.Sprintf(
			"LEGAL NOTICE\nTo: Debtor %d\nOur File Number: L240100%d\nNotice of balance due", d, d))
		for p := 1; p < pagesPer; p++ {
			pages = append(pages, fmt.Sprintf("continuation page %d of letter %d with body text", p, d))
		}
	}
	return pages
}

func TestProcessFixedBatch(t *testing.T) {
	batches := map[string][]string{"ltd.pdf": letterBatch(10, 7)}
	p := newTestPipeline(t, batches).WithFixedPages(7)

	run, err := p.Process(context.Background(), "ltd.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	m := run.Manifest
	if m.TotalDocuments != 10 {
		t.Fatalf("total documents = %d, want 10", m.TotalDocuments)
	}
	if len(m.Documents) != m.TotalDocuments {
		t.Fatalf("record count %d != total %d", len(m.Documents), m.TotalDocuments)
	}

	for i, rec := range m.Documents {
		wantID := fmt.Sprintf("L240100%d", i)
		if rec.Identifier != wantID {
			t.Errorf("doc %d identifier = %q, want %q", i, rec.Identifier, wantID)
		}
		if rec.OutputFile != "LTD_"+wantID+".pdf" {
			t.Errorf("doc %d output = %q", i, rec.OutputFile)
		}
		if rec.PageCount != 7 {
			t.Errorf("doc %d pages = %d", i, rec.PageCount)
		}
		if rec.Unknown || rec.Anomaly {
			t.Errorf("doc %d flagged: unknown=%v anomaly=%v", i, rec.Unknown, rec.Anomaly)
		}
	}

	if m.Documents[0].Pages != "1-7" || m.Documents[9].Pages != "64-70" {
		t.Errorf("page labels = %q, %q", m.Documents[0].Pages, m.Documents[9].Pages)
	}
}

func TestProcessIdempotent(t *testing.T) {
	batches := map[string][]string{"ltd.pdf": letterBatch(4, 2)}
	p := newTestPipeline(t, batches).WithFixedPages(2)

	first, err := p.Process(context.Background(), "ltd.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Process(context.Background(), "ltd.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Documents) != len(second.Documents) {
		t.Fatalf("document counts differ: %d vs %d", len(first.Documents), len(second.Documents))
	}
	for i := range first.Documents {
		a, b := first.Documents[i], second.Documents[i]
		if a.Identifier != b.Identifier || a.OutputFile != b.OutputFile || a.Range != b.Range {
			t.Errorf("doc %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestProcessDuplicateIdentifiers(t *testing.T) {
	pages := []string{
		"Our File Number: G2503406\nfirst letter text",
		"Our File Number: G2503406\nsecond letter text",
	}
	p := newTestPipeline(t, map[string][]string{"dup.pdf": pages}).WithFixedPages(1)

	run, err := p.Process(context.Background(), "dup.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	if run.Manifest.Documents[0].OutputFile != "LTD_G2503406.pdf" {
		t.Errorf("first output = %q", run.Manifest.Documents[0].OutputFile)
	}
	if run.Manifest.Documents[1].OutputFile != "LTD_G2503406_01.pdf" {
		t.Errorf("second output = %q", run.Manifest.Documents[1].OutputFile)
	}
}

func TestProcessUnknownReasons(t *testing.T) {
	pages := []string{
		"letter body with no identifying label anywhere on the page",
		"Our File Number: 98765432\nletter body",
	}
	p := newTestPipeline(t, map[string][]string{"unk.pdf": pages}).WithFixedPages(1)

	run, err := p.Process(context.Background(), "unk.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	first := run.Manifest.Documents[0]
	if !first.Unknown || first.UnknownReason != model.ReasonNoCandidates {
		t.Errorf("first doc = %+v, want extraction failure", first)
	}
	if first.OutputFile != "LTD_UNKNOWN_001.pdf" {
		t.Errorf("first output = %q", first.OutputFile)
	}

	second := run.Manifest.Documents[1]
	if !second.Unknown || second.UnknownReason != model.ReasonValidationFailed {
		t.Errorf("second doc = %+v, want validation failure", second)
	}
	if second.BestRejected != "98765432" {
		t.Errorf("best rejected = %q", second.BestRejected)
	}
	if second.OutputFile != "LTD_UNKNOWN_002.pdf" {
		t.Errorf("second output = %q", second.OutputFile)
	}
}

func TestProcessCorrectionRecorded(t *testing.T) {
	pages := []string{"Our File Number: 12401462\nletter body"}
	p := newTestPipeline(t, map[string][]string{"fix.pdf": pages}).WithFixedPages(1)

	run, err := p.Process(context.Background(), "fix.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	rec := run.Manifest.Documents[0]
	if rec.Identifier != "L2401462" {
		t.Fatalf("identifier = %q", rec.Identifier)
	}
	if len(rec.Corrections) != 1 || rec.Corrections[0].Position != 0 {
		t.Errorf("corrections = %+v", rec.Corrections)
	}
	if len(rec.RawCandidates) == 0 || rec.RawCandidates[0] != "12401462" {
		t.Errorf("raw candidates = %v", rec.RawCandidates)
	}
}

func TestProcessBlankPagesRemoved(t *testing.T) {
	pages := []string{
		"",
		"Our File Number: L2401462\nletter body text",
		"continuation page with more body text",
	}
	p := newTestPipeline(t, map[string][]string{"blank.pdf": pages}).WithFixedPages(2)

	run, err := p.Process(context.Background(), "blank.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	m := run.Manifest
	if len(m.BlankPages) != 1 || m.BlankPages[0] != 0 {
		t.Errorf("blank pages = %v", m.BlankPages)
	}
	if m.TotalDocuments != 1 {
		t.Fatalf("total documents = %d", m.TotalDocuments)
	}
	// Page label uses original source page numbers
	if m.Documents[0].Pages != "2-3" {
		t.Errorf("pages = %q", m.Documents[0].Pages)
	}
}

func TestProcessNoTextIsFatal(t *testing.T) {
	p := newTestPipeline(t, map[string][]string{"empty.pdf": {"", "  ", ""}})

	_, err := p.Process(context.Background(), "empty.pdf", "LTD")
	if !errors.Is(err, pagetext.ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

func TestProcessAutoDetect(t *testing.T) {
	pages := []string{
		"INFORMATION SUBPOENA WITH RESTRAINING NOTICE\nSupreme Court",
		"Firm File No. L2401462\nquestions and answers",
		"Exemption Claim Form\nFile No. L2401462",
		"more subpoena content here",
		"final page of the subpoena",
	}
	p := newTestPipeline(t, map[string][]string{"is.pdf": pages})

	run, err := p.Process(context.Background(), "is.pdf", "")
	if err != nil {
		t.Fatal(err)
	}

	if run.Detection == nil || run.Detection.Type != "IS" {
		t.Fatalf("detection = %+v", run.Detection)
	}
	if run.Manifest.Documents[0].Identifier != "L2401462" {
		t.Errorf("identifier = %q", run.Manifest.Documents[0].Identifier)
	}
	if run.Manifest.Documents[0].OutputFile != "L2401462_IS.pdf" {
		t.Errorf("output = %q", run.Manifest.Documents[0].OutputFile)
	}
}

func TestProcessLowConfidenceNeedsExplicitType(t *testing.T) {
	pages := []string{"unlabeled report page", "another page of prose text"}
	p := newTestPipeline(t, map[string][]string{"odd.pdf": pages})

	_, err := p.Process(context.Background(), "odd.pdf", "")
	if !errors.Is(err, ErrLowConfidence) {
		t.Errorf("err = %v, want ErrLowConfidence", err)
	}
}

// recordingEmitter collects emitted output names
type recordingEmitter struct {
	files []string
}

func (r *recordingEmitter) Emit(ctx context.Context, source string, doc *model.Document) error {
	r.files = append(r.files, doc.OutputFile)
	return nil
}

func TestProcessEmitsEveryDocument(t *testing.T) {
	emitter := &recordingEmitter{}
	p := newTestPipeline(t, map[string][]string{"ltd.pdf": letterBatch(3, 2)}).
		WithFixedPages(2).
		WithEmitter(emitter)

	run, err := p.Process(context.Background(), "ltd.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	if len(emitter.files) != run.Manifest.TotalDocuments {
		t.Errorf("emitted %d files for %d documents", len(emitter.files), run.Manifest.TotalDocuments)
	}
}

func TestProcessFiles(t *testing.T) {
	batches := map[string][]string{
		"a.pdf": letterBatch(2, 2),
		"b.pdf": letterBatch(3, 2),
	}
	p := newTestPipeline(t, batches).WithFixedPages(2)

	results := p.ProcessFiles(context.Background(), []string{"b.pdf", "a.pdf", "missing.pdf"}, "LTD")

	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	// Sorted by source
	if results[0].Source != "a.pdf" || results[1].Source != "b.pdf" {
		t.Errorf("order = %s, %s, %s", results[0].Source, results[1].Source, results[2].Source)
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Errorf("errors = %v, %v", results[0].Err, results[1].Err)
	}
	if results[2].Err == nil {
		t.Error("missing file succeeded")
	}
	if results[1].Run.Manifest.TotalDocuments != 3 {
		t.Errorf("b.pdf documents = %d", results[1].Run.Manifest.TotalDocuments)
	}
}

func TestWriteManifest(t *testing.T) {
	p := newTestPipeline(t, map[string][]string{"ltd.pdf": letterBatch(1, 2)}).WithFixedPages(2)
	run, err := p.Process(context.Background(), "ltd.pdf", "LTD")
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := WriteManifest(run.Manifest, dir, "manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty manifest written")
	}
}

func TestListBatchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := ListBatchFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if filepath.Base(files[0]) != "a.PDF" || filepath.Base(files[1]) != "b.pdf" {
		t.Errorf("files = %v", files)
	}
}
