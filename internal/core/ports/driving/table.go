package driving

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// TableService gives read access to table definitions.
type TableService interface {
	// List returns the available tables. When the source is unreachable
	// the cached tables are returned instead.
	List(ctx context.Context) ([]domain.TableSummary, error)

	// Get retrieves a table definition by ID.
	Get(ctx context.Context, id string) (*domain.TableDefinition, error)
}
