package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list
and evaluate tables.

By default, the server communicates over stdio using JSON-RPC and can be
launched by any MCP-compatible client.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Tools:
  list_tables      List the tables that can be evaluated
  evaluate_table   Evaluate a table and its linked tables
  get_cell         Evaluate a table and return one cell

Examples:
  # Stdio mode (default)
  sheetlink mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  sheetlink mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "sheetlink": {
        "command": "/path/to/sheetlink",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the MCP server from the configured services.
func newMCPServer() (*mcp.Server, error) {
	opts, err := evaluationOptions(0, false, false)
	if err != nil {
		return nil, err
	}
	ports := &mcp.Ports{
		Workbook: workbookService,
		Tables:   tableService,
	}
	return mcp.NewServer(ports, opts)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
