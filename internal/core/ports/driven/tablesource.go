package driven

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// TableSource fetches table definitions from the upstream table service.
type TableSource interface {
	// ListTables returns the tables visible to the caller.
	ListTables(ctx context.Context) ([]domain.TableSummary, error)

	// GetTable fetches one table with all of its cells.
	// Returns domain.ErrNotFound for unknown ids.
	GetTable(ctx context.Context, id string) (*domain.TableDefinition, error)
}
