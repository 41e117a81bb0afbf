package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualmailroom/mailroom/internal/export"
	"github.com/virtualmailroom/mailroom/internal/model"
	"github.com/virtualmailroom/mailroom/internal/pipeline"
)

var (
	splitType    string
	splitPages   int
	outputDir    string
	noOCR        bool
	noCache      bool
	writeXLSX    bool
	assistFlag   bool
	catalogPath  string
	splitTimeout time.Duration
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split <input.pdf>",
	Short: "Split one batch PDF into individual documents",
	Long: `Split segments a multi-page batch PDF into logical documents,
recovers each document's file number from the OCR text, and writes a
manifest describing every document, correction and anomaly.

The document type is auto-detected from page fingerprints. When
detection is not confident enough, name the type with --type.

Example:
  mailroom split scans/batch_0142.pdf
  mailroom split scans/ltd_batch.pdf --type LTD --output-dir ./out
  mailroom split legacy_batch.pdf --type LTD --pages 1
  mailroom split is_batch.pdf --type IS --xlsx --assist`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVar(&splitType, "type", "", "document type (auto-detected when omitted)")
	splitCmd.Flags().IntVar(&splitPages, "pages", 0, "fixed pages per document (overrides the type's boundary policy)")
	splitCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default from config)")
	splitCmd.Flags().BoolVar(&noOCR, "no-ocr", false, "disable OCR fallback for raw scans")
	splitCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page-text cache")
	splitCmd.Flags().BoolVar(&writeXLSX, "xlsx", false, "also write the manifest as a review spreadsheet")
	splitCmd.Flags().BoolVar(&assistFlag, "assist", false, "ask the AI reviewer about unresolved documents (needs OPENAI_API_KEY)")
	splitCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog override file")
	splitCmd.Flags().DurationVar(&splitTimeout, "timeout", 10*time.Minute, "overall timeout for the run")
}

func runSplit(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), splitTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySplitFlags(cfg)

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, newProvider(cfg, logger), cat, logger)
	if splitPages > 0 {
		p.WithFixedPages(splitPages)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Splitting: %s\n", source)
		fmt.Fprintf(os.Stderr, "Type: %s\n", orAuto(splitType))
		fmt.Fprintf(os.Stderr, "Output: %s\n", cfg.Output.Dir)
		fmt.Fprintln(os.Stderr)
	}

	run, err := p.Process(ctx, source, splitType)
	if err != nil {
		if errors.Is(err, pipeline.ErrLowConfidence) {
			return fmt.Errorf("%w\nRe-run with an explicit --type (see 'mailroom detect %s')", err, source)
		}
		return err
	}

	return writeRunOutputs(cfg, source, run)
}

// writeRunOutputs writes the manifest (and optional spreadsheet) and
// prints the per-document summary
func writeRunOutputs(cfg *model.Config, source string, run *pipeline.RunResult) error {
	manifestPath, err := pipeline.WriteManifest(run.Manifest, cfg.Output.Dir, cfg.Output.ManifestName)
	if err != nil {
		return err
	}

	if cfg.Output.WriteXLSX {
		data, err := export.ManifestXLSX(run.Manifest)
		if err != nil {
			return fmt.Errorf("spreadsheet: %w", err)
		}
		xlsxPath := filepath.Join(cfg.Output.Dir, xlsxName(cfg.Output.ManifestName))
		if err := os.WriteFile(xlsxPath, data, 0644); err != nil {
			return fmt.Errorf("write spreadsheet: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Spreadsheet: %s\n", xlsxPath)
	}

	if run.Detection != nil {
		fmt.Fprintf(os.Stderr, "✓ Detected type %s (score %.2f, %s confidence)\n",
			run.Detection.Type, run.Detection.Score, run.Detection.Confidence)
	}

	unknown := 0
	anomalies := 0
	for _, rec := range run.Manifest.Documents {
		mark := "✓"
		if rec.Unknown {
			mark = "?"
			unknown++
		}
		if rec.Anomaly {
			anomalies++
		}
		fmt.Fprintf(os.Stderr, "%s %s (pages %s)\n", mark, rec.OutputFile, rec.Pages)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", source)
	fmt.Fprintf(os.Stderr, "  Documents:  %d\n", run.Manifest.TotalDocuments)
	fmt.Fprintf(os.Stderr, "  Unknown:    %d\n", unknown)
	fmt.Fprintf(os.Stderr, "  Anomalies:  %d\n", anomalies)
	fmt.Fprintf(os.Stderr, "  Manifest:   %s\n", manifestPath)
	fmt.Fprintf(os.Stderr, "\n")
	return nil
}

func applySplitFlags(cfg *model.Config) {
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if noOCR {
		cfg.OCR.Enabled = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if writeXLSX {
		cfg.Output.WriteXLSX = true
	}
	if assistFlag {
		cfg.Assist.Enabled = true
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
}

func orAuto(s string) string {
	if s == "" {
		return "(auto-detect)"
	}
	return s
}

// xlsxName swaps the manifest extension for .xlsx
func xlsxName(manifestName string) string {
	ext := filepath.Ext(manifestName)
	return manifestName[:len(manifestName)-len(ext)] + ".xlsx"
}
