package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

var (
	exportOutput     string
	exportFormulas   bool
	exportNoFormulas bool
	exportStrict     bool
	exportLenient    bool
	exportMaxDepth   int
)

var exportCmd = &cobra.Command{
	Use:   "export [table-id]",
	Short: "Evaluate a table and write an Excel workbook",
	Long: `Evaluates the table and its linked tables and writes one worksheet per
table. Links become cross-sheet formulas; failed cells are written as #ERROR!.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output .xlsx path (default from settings)")
	exportCmd.Flags().BoolVar(&exportFormulas, "formulas", false, "keep formulas next to the computed values")
	exportCmd.Flags().BoolVar(&exportNoFormulas, "no-formulas", false, "write computed values only")
	exportCmd.Flags().BoolVar(&exportStrict, "strict", false, "fail references to unknown tables")
	exportCmd.Flags().BoolVar(&exportLenient, "lenient", false, "treat references to unknown tables as empty")
	exportCmd.Flags().IntVar(&exportMaxDepth, "max-depth", 0, "maximum nested evaluation depth (0 = configured value)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requireWorkbook(); err != nil {
		return err
	}
	if exportFormulas && exportNoFormulas {
		return errors.New("--formulas and --no-formulas are mutually exclusive")
	}

	opts, err := evaluationOptions(exportMaxDepth, exportStrict, exportLenient)
	if err != nil {
		return err
	}
	output, err := outputOptions()
	if err != nil {
		return err
	}

	report, err := workbookService.Export(cmd.Context(), args[0], opts, output)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Wrote %s (%d sheet(s))\n", output.Path, len(report.Tables))
	if len(report.Skipped) > 0 {
		cmd.Printf("Skipped linked tables: %s\n", strings.Join(report.Skipped, ", "))
	}
	if report.ErrorCount > 0 {
		cmd.Printf("%d of %d formula(s) failed; see 'sheetlink eval %s --errors'\n",
			report.ErrorCount, report.FormulaCount, args[0])
	}
	return nil
}

// outputOptions merges stored output settings with command flags.
func outputOptions() (domain.OutputSettings, error) {
	output := domain.DefaultAppSettings().Output
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return domain.OutputSettings{}, fmt.Errorf("failed to get settings: %w", err)
		}
		output = settings.Output
	}
	if exportOutput != "" {
		output.Path = exportOutput
	}
	switch {
	case exportFormulas:
		output.WriteFormulas = true
	case exportNoFormulas:
		output.WriteFormulas = false
	}
	return output, nil
}
