package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtualmailroom/mailroom/internal/correct"
	"github.com/virtualmailroom/mailroom/internal/extract"
)

var correctType string

// correctCmd represents the correct command
var correctCmd = &cobra.Command{
	Use:   "correct <value>...",
	Short: "Run the identifier correction rules on raw values",
	Long: `Correct applies a document type's OCR correction rules to raw
identifier values and prints the outcome. Useful for checking how a
mangled file number would be repaired without processing a batch.

Example:
  mailroom correct 12401462
  mailroom correct --type IS Yl311191 L240224`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(correctCmd)

	correctCmd.Flags().StringVar(&correctType, "type", "LTD", "document type whose rules to apply")
	correctCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog override file")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applySplitFlags(cfg)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	docType, err := cat.Lookup(correctType)
	if err != nil {
		return err
	}

	corrector := correct.New(docType)
	for _, raw := range args {
		value := extract.Clean(raw)
		fixed, corrections := corrector.Apply(value)

		status := "invalid"
		if docType.Shape.Valid(fixed) {
			status = "valid"
			if docType.Shape.Complete(fixed) {
				status = "valid, complete"
			}
		}

		fmt.Printf("%s -> %s (%s)\n", raw, fixed, status)
		for _, c := range corrections {
			fmt.Printf("    pos %d: %s -> %s (%s)\n", c.Position, c.Original, c.Replacement, c.RuleID)
		}
	}
	return nil
}
