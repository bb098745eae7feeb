// Package tui provides an interactive terminal viewer for evaluated tables.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workbook evaluates a table and the tables it links to.
	Workbook driving.WorkbookService

	// Tables lists the tables that can be opened.
	Tables driving.TableService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(workbook driving.WorkbookService, tables driving.TableService) *Ports {
	return &Ports{
		Workbook: workbook,
		Tables:   tables,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Workbook == nil {
		return ErrMissingWorkbookService
	}
	if p.Tables == nil {
		return ErrMissingTableService
	}
	return nil
}
