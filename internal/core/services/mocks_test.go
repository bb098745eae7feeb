package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
)

// mockTableSource serves fixed definitions and counts fetches.
type mockTableSource struct {
	mu      sync.Mutex
	tables  map[string]domain.TableDefinition
	errs    map[string]error
	listErr error
	calls   map[string]int
}

func newMockTableSource(defs ...domain.TableDefinition) *mockTableSource {
	m := &mockTableSource{
		tables: make(map[string]domain.TableDefinition),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
	for _, def := range defs {
		m.tables[def.ID] = def
	}
	return m
}

func (m *mockTableSource) ListTables(_ context.Context) ([]domain.TableSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.TableSummary, 0, len(m.tables))
	for _, def := range m.tables {
		out = append(out, domain.TableSummary{ID: def.ID, Name: def.Name})
	}
	return out, nil
}

func (m *mockTableSource) GetTable(_ context.Context, id string) (*domain.TableDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id]++
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	def, ok := m.tables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &def, nil
}

// mockRenderer records the tables it was asked to render.
type mockRenderer struct {
	tables []domain.RenderedTable
	err    error
}

func (m *mockRenderer) Render(_ context.Context, tables []domain.RenderedTable) error {
	m.tables = tables
	return m.err
}

type mockRendererFactory struct {
	renderer *mockRenderer
	output   domain.OutputSettings
	err      error
}

func (m *mockRendererFactory) NewRenderer(output domain.OutputSettings) (driven.Renderer, error) {
	m.output = output
	if m.err != nil {
		return nil, m.err
	}
	return m.renderer, nil
}

var errUnavailable = errors.New("service unavailable")

func cellAt(ref string) domain.Address {
	return domain.MustParseAddress(ref)
}

func valueDef(ref string, v any) domain.CellDefinition {
	a := cellAt(ref)
	return domain.CellDefinition{Row: a.Row, Column: a.Column, Type: domain.CellTypeValue, Value: v}
}

func formulaDef(ref, text string) domain.CellDefinition {
	a := cellAt(ref)
	return domain.CellDefinition{Row: a.Row, Column: a.Column, Type: domain.CellTypeFormula, Formula: text}
}

func linkDef(ref, tableID, target string) domain.CellDefinition {
	a := cellAt(ref)
	return domain.CellDefinition{
		Row:        a.Row,
		Column:     a.Column,
		Type:       domain.CellTypeLink,
		References: []domain.CellReference{{TableID: tableID, CellAddress: target}},
	}
}

// budgetTables returns a root table linking to an info table, which links back.
func budgetTables() []domain.TableDefinition {
	return []domain.TableDefinition{
		{
			ID:   "budget",
			Name: "Budget",
			Cells: []domain.CellDefinition{
				valueDef("B2", 1000.0),
				valueDef("B3", 500.0),
				formulaDef("B4", "=SUM(B2:B3)"),
				formulaDef("B5", "=B4*info!B1"),
				linkDef("C1", "info", "B1"),
			},
		},
		{
			ID:   "info",
			Name: "Info",
			Cells: []domain.CellDefinition{
				valueDef("B1", 2.0),
				linkDef("C1", "budget", "B4"),
			},
		},
	}
}
