package mcp

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// mockWorkbookService is a mock implementation of driving.WorkbookService.
type mockWorkbookService struct {
	report   *domain.EvaluationReport
	err      error
	lastRoot string
	lastOpts domain.EvaluationSettings
}

func (m *mockWorkbookService) Evaluate(
	_ context.Context,
	rootID string,
	opts domain.EvaluationSettings,
) (*domain.EvaluationReport, error) {
	m.lastRoot = rootID
	m.lastOpts = opts
	return m.report, m.err
}

func (m *mockWorkbookService) Export(
	_ context.Context,
	_ string,
	_ domain.EvaluationSettings,
	_ domain.OutputSettings,
) (*domain.EvaluationReport, error) {
	return nil, domain.ErrNotImplemented
}

// mockTableService is a mock implementation of driving.TableService.
type mockTableService struct {
	tables []domain.TableSummary
	err    error
}

func (m *mockTableService) List(_ context.Context) ([]domain.TableSummary, error) {
	return m.tables, m.err
}

func (m *mockTableService) Get(_ context.Context, _ string) (*domain.TableDefinition, error) {
	return nil, m.err
}

// Ensure mocks implement the interfaces.
var (
	_ driving.WorkbookService = (*mockWorkbookService)(nil)
	_ driving.TableService    = (*mockTableService)(nil)
)

func sampleReport() *domain.EvaluationReport {
	return &domain.EvaluationReport{
		RootID: "budget",
		Tables: []domain.RenderedTable{
			{
				ID:   "budget",
				Name: "Budget",
				Cells: []domain.RenderedCell{
					{Address: "B2", Row: 2, Column: 2, Kind: domain.CellKindValue, Value: 1000.0, Display: "1000"},
					{
						Address: "B4", Row: 4, Column: 2, Kind: domain.CellKindFormula,
						Formula: "=SUM(B2:B3)", Value: 1500.0, Display: "1500", Format: domain.FormatCurrency,
					},
					{Address: "B5", Row: 5, Column: 2, Kind: domain.CellKindFormula, Formula: "=1/0", Error: "division by zero"},
					{Address: "C1", Row: 1, Column: 3, Kind: domain.CellKindReference, Display: "LINK:info!A1", Target: "info!A1"},
				},
			},
			{ID: "info", Name: "Info", Cells: []domain.RenderedCell{}},
		},
		FormulaCount: 2,
		ErrorCount:   1,
	}
}

func newTestServer(wb *mockWorkbookService, tables *mockTableService) *Server {
	server, err := NewServer(&Ports{Workbook: wb, Tables: tables}, domain.EvaluationSettings{MaxDepth: 64})
	if err != nil {
		panic(err)
	}
	return server
}
