package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
)

// Ensure TableStore implements the interface.
var _ driven.TableStore = (*TableStore)(nil)

// TableStore is an in-memory implementation of driven.TableStore.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]domain.TableDefinition
}

// NewTableStore creates a new in-memory table store.
func NewTableStore() *TableStore {
	return &TableStore{
		tables: make(map[string]domain.TableDefinition),
	}
}

// Save stores or replaces a definition.
func (s *TableStore) Save(_ context.Context, def domain.TableDefinition) error {
	if def.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	def.Cells = append([]domain.CellDefinition(nil), def.Cells...)
	s.tables[def.ID] = def
	return nil
}

// Get retrieves a definition by table ID.
func (s *TableStore) Get(_ context.Context, id string) (*domain.TableDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.tables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	def.Cells = append([]domain.CellDefinition(nil), def.Cells...)
	return &def, nil
}

// List returns the cached tables ordered by name.
func (s *TableStore) List(_ context.Context) ([]domain.TableSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.TableSummary, 0, len(s.tables))
	for _, def := range s.tables {
		result = append(result, domain.TableSummary{ID: def.ID, Name: def.Name})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a definition.
func (s *TableStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, id)
	return nil
}
