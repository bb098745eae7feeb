// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewTables lists the tables available for evaluation.
	ViewTables ViewType = iota
	// ViewSheet shows an evaluated table as a grid.
	ViewSheet
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewTables:
		return "tables"
	case ViewSheet:
		return "sheet"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}

// Quit requests application exit.
type Quit struct{}

// TablesLoaded carries the table list back to the model.
type TablesLoaded struct {
	Tables []domain.TableSummary
	Err    error
}

// TableSelected is sent when a table is picked for evaluation.
type TableSelected struct {
	ID string
}

// EvaluationRequested asks for the table to be (re)evaluated.
type EvaluationRequested struct {
	RootID string
}

// EvaluationCompleted carries the evaluation report back to the model.
type EvaluationCompleted struct {
	RootID string
	Report *domain.EvaluationReport
	Err    error
}
