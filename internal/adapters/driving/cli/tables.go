package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

var tablesJSON bool

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Aliases: []string{"ls"},
	Short:   "List available tables",
	Long: `Lists the tables the configured source provides.

When the API cannot be reached the tables cached by the last successful
fetch are listed instead.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "output tables as JSON")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	if tableService == nil {
		return errors.New("table service not configured")
	}

	tables, err := tableService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if tablesJSON {
		return printJSON(cmd, tables)
	}
	return outputTablesList(cmd, tables)
}

func outputTablesList(cmd *cobra.Command, tables []domain.TableSummary) error {
	if len(tables) == 0 {
		cmd.Println("No tables found.")
		return nil
	}

	width := len("ID")
	for _, t := range tables {
		width = max(width, len(t.ID))
	}

	cmd.Printf("%-*s  %s\n", width, "ID", "NAME")
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = "(untitled)"
		}
		cmd.Printf("%-*s  %s\n", width, t.ID, name)
	}
	cmd.Printf("\n%d table(s)\n", len(tables))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
