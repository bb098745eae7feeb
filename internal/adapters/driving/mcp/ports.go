package mcp

import (
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workbook evaluates tables.
	Workbook driving.WorkbookService

	// Tables lists and fetches table definitions.
	Tables driving.TableService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workbook == nil {
		return ErrMissingWorkbookService
	}
	if p.Tables == nil {
		return ErrMissingTableService
	}
	return nil
}
