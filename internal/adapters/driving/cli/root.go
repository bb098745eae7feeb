// Package cli provides the cobra command tree for sheetlink.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services holds the driving ports the commands run against.
type Services struct {
	Workbook driving.WorkbookService
	Tables   driving.TableService
	Settings driving.SettingsService

	// Close releases resources held by the services, may be nil.
	Close func() error
}

// GlobalOptions are the persistent flags passed to the bootstrap function.
type GlobalOptions struct {
	ConfigDir string
	Demo      bool
	Verbose   bool
}

// BootstrapFunc builds the services once the global flags are parsed.
type BootstrapFunc func(opts GlobalOptions) (*Services, error)

var (
	workbookService driving.WorkbookService
	tableService    driving.TableService
	settingsService driving.SettingsService

	bootstrap    BootstrapFunc
	closeService func() error

	verbose   bool
	demoMode  bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "sheetlink",
	Short: "Evaluate linked spreadsheet tables",
	Long: `sheetlink fetches table definitions, evaluates their formulas across
linked tables and exports the result as an Excel workbook.

Formulas may reference cells of other tables (table_2!B4). Linked tables are
fetched and evaluated together; circular references are reported per cell.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "use the built-in sample tables instead of the API")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.sheetlink)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing the bootstrap function.
func SetServices(s *Services) {
	if s == nil {
		workbookService, tableService, settingsService, closeService = nil, nil, nil, nil
		return
	}
	workbookService = s.Workbook
	tableService = s.Tables
	settingsService = s.Settings
	closeService = s.Close
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || workbookService != nil {
		return nil
	}

	logger.Section("Bootstrap")
	services, err := bootstrap(GlobalOptions{ConfigDir: configDir, Demo: demoMode, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeService == nil {
		return nil
	}
	err := closeService()
	closeService = nil
	return err
}

// evaluationOptions merges stored settings with command flags.
// maxDepth <= 0 keeps the stored depth; strict and lenient override the stored mode.
func evaluationOptions(maxDepth int, strict, lenient bool) (domain.EvaluationSettings, error) {
	if strict && lenient {
		return domain.EvaluationSettings{}, errors.New("--strict and --lenient are mutually exclusive")
	}

	opts := domain.DefaultAppSettings().Evaluation
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return domain.EvaluationSettings{}, fmt.Errorf("failed to get settings: %w", err)
		}
		opts = settings.Evaluation
	}

	if maxDepth > 0 {
		opts.MaxDepth = maxDepth
	}
	switch {
	case strict:
		opts.StrictReferences = true
	case lenient:
		opts.StrictReferences = false
	}
	return opts, nil
}

// requireWorkbook checks that the evaluation services are wired.
func requireWorkbook() error {
	if workbookService == nil {
		return errors.New("workbook service not configured")
	}
	return nil
}
