package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

func TestServer_handleListTables(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tables", func(t *testing.T) {
		tables := &mockTableService{tables: []domain.TableSummary{
			{ID: "budget", Name: "Budget"}, {ID: "info", Name: "Info"},
		}}
		server := newTestServer(&mockWorkbookService{}, tables)

		_, output, err := server.handleListTables(ctx, nil, ListTablesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, TableOutput{ID: "info", Name: "Info"}, output.Tables[1])
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{}, &mockTableService{})

		_, output, err := server.handleListTables(ctx, nil, ListTablesInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Tables)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{}, &mockTableService{err: errors.New("offline")})

		_, _, err := server.handleListTables(ctx, nil, ListTablesInput{})

		assert.EqualError(t, err, "offline")
	})
}

func TestServer_handleEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns evaluated tables", func(t *testing.T) {
		wb := &mockWorkbookService{report: sampleReport()}
		server := newTestServer(wb, &mockTableService{})

		_, output, err := server.handleEvaluate(ctx, nil, EvaluateInput{TableID: " budget "})

		require.NoError(t, err)
		assert.Equal(t, "budget", wb.lastRoot)
		assert.Equal(t, 64, wb.lastOpts.MaxDepth)
		assert.False(t, wb.lastOpts.StrictReferences)
		assert.Equal(t, "budget", output.RootID)
		assert.Equal(t, 2, output.FormulaCount)
		assert.Equal(t, 1, output.ErrorCount)
		require.Len(t, output.Tables, 2)
		require.Len(t, output.Tables[0].Cells, 4)

		b4 := output.Tables[0].Cells[1]
		assert.Equal(t, "B4", b4.Address)
		assert.Equal(t, "formula", b4.Kind)
		assert.Equal(t, 1500.0, b4.Value)
		assert.Equal(t, "currency", b4.Format)
		assert.NotNil(t, output.Tables[1].Cells)
	})

	t.Run("overrides evaluation settings", func(t *testing.T) {
		wb := &mockWorkbookService{report: sampleReport()}
		server := newTestServer(wb, &mockTableService{})
		strict := true

		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{TableID: "budget", Strict: &strict, MaxDepth: 5})

		require.NoError(t, err)
		assert.True(t, wb.lastOpts.StrictReferences)
		assert.Equal(t, 5, wb.lastOpts.MaxDepth)
	})

	t.Run("errors only", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{report: sampleReport()}, &mockTableService{})

		_, output, err := server.handleEvaluate(ctx, nil, EvaluateInput{TableID: "budget", ErrorsOnly: true})

		require.NoError(t, err)
		require.Len(t, output.Tables[0].Cells, 1)
		assert.Equal(t, "B5", output.Tables[0].Cells[0].Address)
		assert.Equal(t, "division by zero", output.Tables[0].Cells[0].Error)
	})

	t.Run("requires table id", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{}, &mockTableService{})

		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{TableID: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns evaluation error", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{err: domain.ErrNotFound}, &mockTableService{})

		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{TableID: "gone"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleGetCell(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cell", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{report: sampleReport()}, &mockTableService{})

		_, output, err := server.handleGetCell(ctx, nil, GetCellInput{TableID: "budget", Address: "b4"})

		require.NoError(t, err)
		assert.Equal(t, "budget", output.TableID)
		assert.Equal(t, "1500", output.Cell.Display)
		assert.Equal(t, "=SUM(B2:B3)", output.Cell.Formula)
	})

	t.Run("returns reference target", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{report: sampleReport()}, &mockTableService{})

		_, output, err := server.handleGetCell(ctx, nil, GetCellInput{TableID: "budget", Address: "C1"})

		require.NoError(t, err)
		assert.Equal(t, "info!A1", output.Cell.Target)
	})

	t.Run("missing cell", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{report: sampleReport()}, &mockTableService{})

		_, _, err := server.handleGetCell(ctx, nil, GetCellInput{TableID: "budget", Address: "Z9"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid address", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{report: sampleReport()}, &mockTableService{})

		_, _, err := server.handleGetCell(ctx, nil, GetCellInput{TableID: "budget", Address: "not-a-cell"})

		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})

	t.Run("requires table id", func(t *testing.T) {
		server := newTestServer(&mockWorkbookService{}, &mockTableService{})

		_, _, err := server.handleGetCell(ctx, nil, GetCellInput{Address: "A1"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
