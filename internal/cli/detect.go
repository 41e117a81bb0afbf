package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualmailroom/mailroom/internal/detect"
	"github.com/virtualmailroom/mailroom/internal/model"
	"github.com/virtualmailroom/mailroom/internal/pagetext"
	"github.com/virtualmailroom/mailroom/internal/segment"
)

var detectTimeout time.Duration

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <input.pdf>",
	Short: "Report the likely document type of a batch",
	Long: `Detect samples the first pages of a batch and scores each known
document type's fingerprints against them. The result is a best-effort
guess with a confidence bucket; below the confidence threshold the
answer is explicitly low-confidence and 'split' will demand --type.

Example:
  mailroom detect scans/batch_0142.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().BoolVar(&noOCR, "no-ocr", false, "disable OCR fallback for raw scans")
	detectCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page-text cache")
	detectCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog override file")
	detectCmd.Flags().DurationVar(&detectTimeout, "timeout", 5*time.Minute, "timeout for the run")
}

func runDetect(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
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

	texts, err := newProvider(cfg, logger).PageTexts(ctx, source)
	if err != nil {
		return fmt.Errorf("page text for %s: %w", source, err)
	}
	if err := pagetext.Validate(texts); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	blanks := segment.MarkBlanks(texts)
	batch := &model.Batch{Source: source, Pages: make([]model.Page, len(texts))}
	for i, text := range texts {
		batch.Pages[i] = model.Page{Index: i, Text: text, Blank: blanks[i]}
	}

	res := detect.New(cat, cfg.Detect).Detect(batch)

	fmt.Printf("Source:     %s\n", source)
	fmt.Printf("Type:       %s\n", orNone(res.Type))
	fmt.Printf("Score:      %.2f\n", res.Score)
	fmt.Printf("Confidence: %s\n", res.Confidence)
	if res.Low {
		fmt.Fprintf(os.Stderr, "\nDetection is below the confidence threshold; pass --type to 'mailroom split'.\n")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
