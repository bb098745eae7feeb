// Package memory provides an in-memory table source. It serves the sample
// tables behind --demo and the fixtures of adapter tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.TableSource = (*Source)(nil)

// Source serves table definitions from memory.
type Source struct {
	mu     sync.RWMutex
	tables map[string]domain.TableDefinition
}

// NewSource creates a source holding defs. Later definitions replace
// earlier ones with the same ID.
func NewSource(defs ...domain.TableDefinition) *Source {
	s := &Source{tables: make(map[string]domain.TableDefinition, len(defs))}
	for _, def := range defs {
		s.tables[def.ID] = def
	}
	return s
}

// Put adds or replaces a definition.
func (s *Source) Put(def domain.TableDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[def.ID] = def
}

// ListTables returns the tables ordered by name.
func (s *Source) ListTables(_ context.Context) ([]domain.TableSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TableSummary, 0, len(s.tables))
	for _, def := range s.tables {
		out = append(out, domain.TableSummary{ID: def.ID, Name: def.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetTable returns a copy of the definition with the given ID.
func (s *Source) GetTable(ctx context.Context, id string) (*domain.TableDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.tables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	def.Cells = append([]domain.CellDefinition(nil), def.Cells...)
	return &def, nil
}
