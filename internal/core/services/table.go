package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// Ensure TableService implements the interface.
var _ driving.TableService = (*TableService)(nil)

// TableService lists and fetches table definitions.
type TableService struct {
	source driven.TableSource
	store  driven.TableStore
	loader *WorkbookLoader
}

// NewTableService creates a new table service. The store is optional.
func NewTableService(source driven.TableSource, store driven.TableStore) *TableService {
	return &TableService{
		source: source,
		store:  store,
		loader: NewWorkbookLoader(source, store),
	}
}

// List returns the tables of the source ordered by name. If the source
// fails and a store is configured, the cached tables are listed instead.
func (s *TableService) List(ctx context.Context) ([]domain.TableSummary, error) {
	if s.source == nil {
		return nil, domain.ErrNotImplemented
	}
	tables, err := s.source.ListTables(ctx)
	if err != nil {
		if s.store == nil || ctx.Err() != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		cached, cacheErr := s.store.List(ctx)
		if cacheErr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		logger.Warn("Listing cached tables: %v", err)
		tables = cached
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Name != tables[j].Name {
			return tables[i].Name < tables[j].Name
		}
		return tables[i].ID < tables[j].ID
	})
	return tables, nil
}

// Get retrieves a table definition by ID.
func (s *TableService) Get(ctx context.Context, id string) (*domain.TableDefinition, error) {
	if s.source == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.loader.Definition(ctx, id)
}
