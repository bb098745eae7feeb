package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui"
)

var (
	viewStrict   bool
	viewLenient  bool
	viewMaxDepth int
)

// viewCmd represents the view command.
var viewCmd = &cobra.Command{
	Use:     "view [table-id]",
	Aliases: []string{"tui"},
	Short:   "Browse evaluated tables in the terminal",
	Long: `Launch the interactive viewer.

Without an argument the viewer starts on the table list; with a table id it
opens that table directly.

Controls:
  ↑↓←→, hjkl  - Move between cells
  Tab         - Next linked table
  Enter       - Evaluate table / follow link
  r           - Evaluate again
  Esc         - Back
  ?           - Toggle help
  q           - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewStrict, "strict", false, "fail references to unknown tables")
	viewCmd.Flags().BoolVar(&viewLenient, "lenient", false, "treat references to unknown tables as empty")
	viewCmd.Flags().IntVar(&viewMaxDepth, "max-depth", 0, "maximum nested evaluation depth (0 = configured value)")
	rootCmd.AddCommand(viewCmd)
}

// newViewer builds the TUI app for the given root table.
func newViewer(cmd *cobra.Command, args []string) (*tui.App, error) {
	opts, err := evaluationOptions(viewMaxDepth, viewStrict, viewLenient)
	if err != nil {
		return nil, err
	}

	app, err := tui.NewApp(tui.NewPorts(workbookService, tableService), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if len(args) == 1 {
		app.WithRoot(args[0])
	}
	return app, nil
}

func runView(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newViewer(cmd, args)
	if err != nil {
		return err
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
