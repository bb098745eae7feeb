// Package mcp provides an MCP (Model Context Protocol) server adapter for sheetlink.
// It lets AI assistants list tables and read their evaluated values.
package mcp

import "errors"

// ErrMissingWorkbookService is returned when the workbook service is not provided.
var ErrMissingWorkbookService = errors.New("mcp: workbook service is required")

// ErrMissingTableService is returned when the table service is not provided.
var ErrMissingTableService = errors.New("mcp: table service is required")
