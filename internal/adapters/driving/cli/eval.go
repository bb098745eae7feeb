package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/components/grid"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// maxGridCells bounds the grid rendering; larger tables are printed as a list.
const maxGridCells = 10_000

var (
	evalJSON        bool
	evalList        bool
	evalErrorsOnly  bool
	evalStrict      bool
	evalLenient     bool
	evalMaxDepth    int
	evalFailOnError bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [table-id]",
	Short: "Evaluate a table and its linked tables",
	Long: `Fetches the table, every table reachable through its links, and
evaluates all formulas.

Cell failures (syntax errors, circular references, division by zero) are
reported per cell; the rest of the table is still evaluated.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output the evaluation report as JSON")
	evalCmd.Flags().BoolVar(&evalList, "list", false, "print one line per cell instead of a grid")
	evalCmd.Flags().BoolVar(&evalErrorsOnly, "errors", false, "only print cells that failed")
	evalCmd.Flags().BoolVar(&evalStrict, "strict", false, "fail references to unknown tables")
	evalCmd.Flags().BoolVar(&evalLenient, "lenient", false, "treat references to unknown tables as empty")
	evalCmd.Flags().IntVar(&evalMaxDepth, "max-depth", 0, "maximum nested evaluation depth (0 = configured value)")
	evalCmd.Flags().BoolVar(&evalFailOnError, "fail-on-error", false, "exit with an error when any cell fails")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	if err := requireWorkbook(); err != nil {
		return err
	}
	opts, err := evaluationOptions(evalMaxDepth, evalStrict, evalLenient)
	if err != nil {
		return err
	}

	report, err := workbookService.Evaluate(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	switch {
	case evalJSON:
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	case evalErrorsOnly:
		outputErrors(cmd, report)
	default:
		for i := range report.Tables {
			if i > 0 {
				cmd.Println()
			}
			outputTable(cmd, &report.Tables[i], evalList)
		}
		cmd.Println()
		outputErrors(cmd, report)
	}

	if evalFailOnError && report.ErrorCount > 0 {
		return fmt.Errorf("%d cell(s) failed to evaluate", report.ErrorCount)
	}
	return nil
}

func outputTable(cmd *cobra.Command, t *domain.RenderedTable, list bool) {
	name := t.Name
	if name == "" {
		name = "(untitled)"
	}
	cmd.Printf("== %s (%s) ==\n", name, t.ID)

	if len(t.Cells) == 0 {
		cmd.Println("(empty)")
		return
	}

	rows, cols := bounds(t)
	if list || rows*cols > maxGridCells {
		outputCellList(cmd, t)
		return
	}
	cmd.Println(renderGrid(t, rows, cols))
}

func bounds(t *domain.RenderedTable) (rows, cols int) {
	for i := range t.Cells {
		rows = max(rows, t.Cells[i].Row)
		cols = max(cols, t.Cells[i].Column)
	}
	return rows, cols
}

// renderGrid draws the table with row numbers and column letters.
func renderGrid(t *domain.RenderedTable, rows, cols int) string {
	byAddr := make(map[domain.Address]*domain.RenderedCell, len(t.Cells))
	for i := range t.Cells {
		byAddr[domain.Address{Row: t.Cells[i].Row, Column: t.Cells[i].Column}] = &t.Cells[i]
	}

	headers := make([]string, 0, cols+1)
	headers = append(headers, "")
	for col := 1; col <= cols; col++ {
		headers = append(headers, domain.ColumnName(col))
	}

	data := make([][]string, 0, rows)
	for row := 1; row <= rows; row++ {
		line := make([]string, 0, cols+1)
		line = append(line, strconv.Itoa(row))
		for col := 1; col <= cols; col++ {
			line = append(line, grid.CellText(byAddr[domain.Address{Row: row, Column: col}]))
		}
		data = append(data, line)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(data...).
		String()
}

func outputCellList(cmd *cobra.Command, t *domain.RenderedTable) {
	for i := range t.Cells {
		c := &t.Cells[i]
		var detail string
		switch {
		case c.Error != "":
			detail = "#ERROR! " + c.Error
		case c.Kind == domain.CellKindReference && c.Target != "":
			detail = "-> " + c.Target
		default:
			detail = c.Display
		}
		if c.Formula != "" {
			cmd.Printf("  %-8s %-24s %s\n", c.Address, c.Formula, detail)
		} else {
			cmd.Printf("  %-8s %s\n", c.Address, detail)
		}
	}
}

func outputErrors(cmd *cobra.Command, report *domain.EvaluationReport) {
	var lines []string
	for _, t := range report.Tables {
		for _, c := range t.Errors() {
			lines = append(lines, fmt.Sprintf("  %s!%s: %s", t.ID, c.Address, c.Error))
		}
	}
	if len(lines) > 0 {
		cmd.Println("Errors:")
		cmd.Println(strings.Join(lines, "\n"))
	}
	if len(report.Skipped) > 0 {
		cmd.Printf("Skipped linked tables: %s\n", strings.Join(report.Skipped, ", "))
	}
	cmd.Printf("Evaluated %d table(s): %d formula(s), %d error(s)\n",
		len(report.Tables), report.FormulaCount, report.ErrorCount)
}
