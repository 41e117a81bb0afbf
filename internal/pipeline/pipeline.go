// Package pipeline orchestrates one batch run: page text, blank removal,
// segmentation, identifier resolution, duplicate handling and the manifest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/virtualmailroom/mailroom/internal/assist"
	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/detect"
	"github.com/virtualmailroom/mailroom/internal/extract"
	"github.com/virtualmailroom/mailroom/internal/model"
	"github.com/virtualmailroom/mailroom/internal/pagetext"
	"github.com/virtualmailroom/mailroom/internal/reconcile"
	"github.com/virtualmailroom/mailroom/internal/segment"
	"github.com/virtualmailroom/mailroom/internal/worker"
)

// ErrLowConfidence means auto-detection could not settle on a document
// type. The caller must name the type explicitly.
var ErrLowConfidence = errors.New("document type detection below confidence threshold")

// ErrNoDocuments means a batch with readable pages produced no documents
var ErrNoDocuments = errors.New("no documents produced from non-empty batch")

// Pipeline runs the complete split for one batch file
type Pipeline struct {
	provider pagetext.Provider
	catalog  *catalog.Catalog
	detector *detect.Detector
	reviewer *assist.Reviewer // Optional, nil when assist is disabled
	emitter  Emitter
	config   *model.Config
	logger   *zap.Logger

	fixedPages int // When > 0, overrides the catalog boundary policy
}

// WithEmitter replaces the page-copy emitter. The default emitter only
// names outputs.
func (p *Pipeline) WithEmitter(e Emitter) *Pipeline {
	p.emitter = e
	return p
}

// WithFixedPages overrides the catalog boundary policy with a fixed
// page count. Legacy intake batches carry no markers, only a known
// pages-per-document contract.
func (p *Pipeline) WithFixedPages(n int) *Pipeline {
	p.fixedPages = n
	return p
}

// New creates a pipeline over the given page-text provider and catalog
func New(cfg *model.Config, provider pagetext.Provider, cat *catalog.Catalog, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var reviewer *assist.Reviewer
	if cfg.Assist.Enabled {
		r, err := assist.NewReviewer(cfg.Assist)
		if err != nil {
			logger.Warn("assist disabled", zap.Error(err))
		} else {
			reviewer = r
		}
	}

	return &Pipeline{
		provider: provider,
		catalog:  cat,
		detector: detect.New(cat, cfg.Detect),
		reviewer: reviewer,
		emitter:  NopEmitter{},
		config:   cfg,
		logger:   logger,
	}
}

// RunResult is the outcome of processing one batch
type RunResult struct {
	Manifest  *model.Manifest
	Documents []model.Document
	Detection *detect.Result // Set when the type was auto-detected
}

// Process splits one batch file into documents. typeName selects the
// catalog entry; when empty the type is auto-detected. The run is fatal
// only when no page yields any text; per-document failures are recorded
// in the manifest instead.
func (p *Pipeline) Process(ctx context.Context, source, typeName string) (*RunResult, error) {
	texts, err := p.provider.PageTexts(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("page text for %s: %w", source, err)
	}
	if err := pagetext.Validate(texts); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	batch := buildBatch(source, texts)
	p.logger.Info("batch read",
		zap.String("source", source),
		zap.Int("pages", len(batch.Pages)),
		zap.Int("blank", len(batch.RemovedBlank())))

	result := &RunResult{}

	if typeName == "" {
		det := p.detector.Detect(batch)
		if det.Low {
			return nil, fmt.Errorf("%s (best guess %q, score %.2f): %w",
				source, det.Type, det.Score, ErrLowConfidence)
		}
		typeName = det.Type
		result.Detection = &det
		p.logger.Info("type detected",
			zap.String("type", det.Type),
			zap.Float64("score", det.Score))
	}

	docType, err := p.catalog.Lookup(typeName)
	if err != nil {
		return nil, err
	}

	boundary := docType.Boundary
	if p.fixedPages > 0 {
		boundary = catalog.BoundaryPolicy{Kind: catalog.BoundaryFixed, PageCount: p.fixedPages}
	}

	seg, err := segment.New(boundary).Split(batch)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", source, err)
	}
	if len(seg.Segments) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoDocuments)
	}

	docs := p.resolveAll(docType, seg)

	// Duplicate resolution is order-sensitive and always runs as a
	// sequential pass after the concurrent per-document work
	dedupe := reconcile.NewDeduplicator(docType)
	for i := range docs {
		dedupe.Assign(&docs[i])
	}

	for i := range docs {
		if err := p.emitter.Emit(ctx, source, &docs[i]); err != nil {
			return nil, fmt.Errorf("emit %s: %w", docs[i].OutputFile, err)
		}
	}

	result.Documents = docs
	result.Manifest = p.buildManifest(ctx, source, docType, seg, docs)
	return result, nil
}

// resolveAll runs extraction and reconciliation for every segment
// concurrently and returns the documents in segment order
func (p *Pipeline) resolveAll(docType *catalog.DocumentType, seg *segment.Result) []model.Document {
	extractor := extract.New(docType)
	reconciler := reconcile.New(docType)

	pool := worker.NewPool(p.config.Concurrency.DocumentWorkers)
	pool.Start()

	for i, s := range seg.Segments {
		pool.Submit(&docJob{
			index:      i,
			typeName:   docType.Name,
			segment:    s,
			pages:      seg.Pages[s.Range.Start:s.Range.End],
			extractor:  extractor,
			reconciler: reconciler,
		})
	}

	docs := make([]model.Document, len(seg.Segments))
	for _, res := range pool.Wait() {
		dr := res.(*docResult)
		docs[dr.index] = dr.doc
	}
	return docs
}

// docJob resolves the identifier for one segmented document
type docJob struct {
	index      int
	typeName   string
	segment    segment.Segment
	pages      []model.Page
	extractor  *extract.Extractor
	reconciler *reconcile.Reconciler
}

// Execute implements worker.Job
func (j *docJob) Execute(ctx context.Context) worker.Result {
	doc := model.Document{
		Type:          j.typeName,
		Range:         j.segment.Range,
		Anomaly:       j.segment.Anomaly,
		AnomalyDetail: j.segment.AnomalyDetail,
	}

	doc.Candidates = j.extractor.Candidates(j.pages)
	out := j.reconciler.Resolve(doc.Candidates)

	doc.Identifier = out.Identifier
	doc.UnknownReason = out.UnknownReason
	doc.TruncationRepair = out.TruncationRepair
	doc.Corrections = out.Corrections
	doc.BestRejected = out.BestRejected

	return &docResult{index: j.index, doc: doc}
}

// docResult carries one resolved document back from the pool
type docResult struct {
	index int
	doc   model.Document
}

// GetError implements worker.Result. Resolution failures are recorded
// on the document, never surfaced as job errors.
func (r *docResult) GetError() error { return nil }

// buildManifest assembles the manifest, consulting the AI reviewer for
// unresolved documents when assist is enabled
func (p *Pipeline) buildManifest(ctx context.Context, source string, docType *catalog.DocumentType, seg *segment.Result, docs []model.Document) *model.Manifest {
	m := &model.Manifest{
		ProcessedAt:    time.Now().UTC(),
		SourceFile:     source,
		DocumentType:   docType.Name,
		TotalDocuments: len(docs),
		BlankPages:     seg.BlankPages,
		Documents:      make([]model.ManifestRecord, 0, len(docs)),
	}

	for i := range docs {
		doc := &docs[i]
		rec := model.ManifestRecord{
			OutputFile:       doc.OutputFile,
			DocumentType:     doc.Type,
			Identifier:       doc.Identifier,
			Unknown:          doc.Unknown(),
			UnknownReason:    doc.UnknownReason,
			Pages:            pageLabel(seg.Pages, doc.Range),
			PageCount:        doc.Range.Len(),
			Corrections:      doc.Corrections,
			TruncationRepair: doc.TruncationRepair,
			BestRejected:     doc.BestRejected,
			RawCandidates:    rawValues(doc.Candidates),
			Anomaly:          doc.Anomaly,
			AnomalyDetail:    doc.AnomalyDetail,
		}

		if p.reviewer != nil && doc.Unknown() {
			rec.Assist = p.review(ctx, docType, seg, doc)
		}

		m.Documents = append(m.Documents, rec)
	}

	return m
}

func (p *Pipeline) review(ctx context.Context, docType *catalog.DocumentType, seg *segment.Result, doc *model.Document) *model.AssistNote {
	req := assist.Request{
		DocumentType:  docType.Name,
		RawCandidates: rawValues(doc.Candidates),
		ShapeHint: fmt.Sprintf("prefix %s followed by digits, %d characters when complete",
			strings.Join(docType.Shape.Prefixes, "/"), docType.Shape.FullLength),
	}
	if doc.Range.Len() > 0 {
		req.PageText = seg.Pages[doc.Range.Start].Text
	}

	note, err := p.reviewer.Review(ctx, req)
	if err != nil {
		p.logger.Warn("assist review failed",
			zap.String("document", doc.OutputFile),
			zap.Error(err))
		return nil
	}
	return note
}

// buildBatch marks blank pages once at ingest
func buildBatch(source string, texts []string) *model.Batch {
	blanks := segment.MarkBlanks(texts)
	batch := &model.Batch{Source: source, Pages: make([]model.Page, len(texts))}
	for i, text := range texts {
		batch.Pages[i] = model.Page{Index: i, Text: text, Blank: blanks[i]}
	}
	return batch
}

// pageLabel renders a 1-based first-last range over source page numbers
func pageLabel(pages []model.Page, r model.PageRange) string {
	if r.Len() == 0 {
		return ""
	}
	first := pages[r.Start].Index + 1
	last := pages[r.End-1].Index + 1
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

func rawValues(cands []model.Candidate) []string {
	if len(cands) == 0 {
		return nil
	}
	vals := make([]string, 0, len(cands))
	for _, c := range cands {
		vals = append(vals, c.Raw)
	}
	return vals
}
