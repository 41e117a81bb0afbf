package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/virtualmailroom/mailroom/internal/worker"
)

// BatchResult is the outcome of one file in a multi-file run
type BatchResult struct {
	Source string
	Run    *RunResult
	Err    error
}

// GetError returns the error for this file, if any
func (r *BatchResult) GetError() error {
	return r.Err
}

// fileJob processes one batch file inside the file-level worker pool
type fileJob struct {
	source   string
	typeName string
	pipeline *Pipeline
}

// Execute implements worker.Job
func (j *fileJob) Execute(ctx context.Context) worker.Result {
	run, err := j.pipeline.Process(ctx, j.source, j.typeName)
	return &BatchResult{Source: j.source, Run: run, Err: err}
}

// ProcessFiles splits several batch files concurrently. One file
// failing never stops the others; each result carries its own error.
func (p *Pipeline) ProcessFiles(ctx context.Context, sources []string, typeName string) []*BatchResult {
	if len(sources) == 0 {
		return nil
	}

	pool := worker.NewPool(p.config.Concurrency.FileWorkers)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&fileJob{source: source, typeName: typeName, pipeline: p})
	}

	results := make([]*BatchResult, 0, len(sources))
	for _, res := range pool.Wait() {
		results = append(results, res.(*BatchResult))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Source < results[j].Source
	})
	return results
}

// ListBatchFiles returns the PDF files directly under dir, sorted
func ListBatchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
