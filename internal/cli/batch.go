package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualmailroom/mailroom/internal/pipeline"
)

var (
	batchType    string
	fileWorkers  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Split every batch PDF in a directory",
	Long: `Batch processes every PDF directly under a directory, in parallel.
Each file gets its own subdirectory under the output directory with its
own manifest. One file failing never stops the others.

Example:
  mailroom batch ./scans
  mailroom batch ./scans --type IS --workers 4
  mailroom batch ./scans --output-dir ./out --xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchType, "type", "", "document type for every file (auto-detected per file when omitted)")
	batchCmd.Flags().IntVar(&fileWorkers, "workers", 0, "number of files processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default from config)")
	batchCmd.Flags().BoolVar(&noOCR, "no-ocr", false, "disable OCR fallback for raw scans")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page-text cache")
	batchCmd.Flags().BoolVar(&writeXLSX, "xlsx", false, "also write each manifest as a review spreadsheet")
	batchCmd.Flags().BoolVar(&assistFlag, "assist", false, "ask the AI reviewer about unresolved documents (needs OPENAI_API_KEY)")
	batchCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog override file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 60*time.Minute, "total timeout for the batch run")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySplitFlags(cfg)
	if fileWorkers > 0 {
		cfg.Concurrency.FileWorkers = fileWorkers
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	files, err := pipeline.ListBatchFiles(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found in %s", dir)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input dir:  %s (%d files)\n", dir, len(files))
	fmt.Fprintf(os.Stderr, "  Workers:    %d\n", cfg.Concurrency.FileWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir: %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.New(cfg, newProvider(cfg, logger), cat, logger)
	results := p.ProcessFiles(ctx, files, batchType)

	baseDir := cfg.Output.Dir
	succeeded := 0
	failed := 0
	totalDocs := 0

	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Source, res.Err)
			continue
		}

		// Per-file output directory named after the source file
		fileCfg := *cfg
		fileCfg.Output.Dir = filepath.Join(baseDir, batchSlug(res.Source))
		if err := writeRunOutputs(&fileCfg, res.Source, res.Run); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Source, err)
			continue
		}

		succeeded++
		totalDocs += res.Run.Manifest.TotalDocuments
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Files:      %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Succeeded:  %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failed:     %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Documents:  %d\n", totalDocs)
	fmt.Fprintf(os.Stderr, "\n")

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// batchSlug names a file's output subdirectory after its base name
func batchSlug(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
