package driven

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// TableStore caches table definitions locally. Only definitions are
// stored; evaluation results never are.
type TableStore interface {
	// Save stores or replaces a definition.
	Save(ctx context.Context, def domain.TableDefinition) error

	// Get retrieves a definition by table ID.
	// Returns domain.ErrNotFound if the table is not cached.
	Get(ctx context.Context, id string) (*domain.TableDefinition, error)

	// List returns the cached tables ordered by name.
	List(ctx context.Context) ([]domain.TableSummary, error)

	// Delete removes a definition. Deleting a missing table is not an error.
	Delete(ctx context.Context, id string) error
}
