package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// ListTablesInput is the input schema for the list_tables tool.
type ListTablesInput struct{}

// ListTablesOutput is the output schema for the list_tables tool.
type ListTablesOutput struct {
	Tables []TableOutput `json:"tables"`
	Count  int           `json:"count"`
}

// TableOutput identifies one table.
type TableOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EvaluateInput is the input schema for the evaluate_table tool.
type EvaluateInput struct {
	TableID    string `json:"table_id" jsonschema:"id of the table to evaluate; linked tables are evaluated too"`
	Strict     *bool  `json:"strict,omitempty" jsonschema:"fail cells that reference unknown tables instead of treating them as empty"`
	MaxDepth   int    `json:"max_depth,omitempty" jsonschema:"maximum nested evaluation depth"`
	ErrorsOnly bool   `json:"errors_only,omitempty" jsonschema:"only return cells that failed to evaluate"`
}

// EvaluateOutput is the output schema for the evaluate_table tool.
type EvaluateOutput struct {
	RootID       string                 `json:"root_id"`
	Tables       []EvaluatedTableOutput `json:"tables"`
	Skipped      []string               `json:"skipped,omitempty"`
	FormulaCount int                    `json:"formula_count"`
	ErrorCount   int                    `json:"error_count"`
}

// EvaluatedTableOutput is one evaluated table.
type EvaluatedTableOutput struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Cells []CellOutput `json:"cells"`
}

// CellOutput is one evaluated cell.
type CellOutput struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
	Value   any    `json:"value"`
	Display string `json:"display"`
	Formula string `json:"formula,omitempty"`
	Target  string `json:"target,omitempty"`
	Format  string `json:"format,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetCellInput is the input schema for the get_cell tool.
type GetCellInput struct {
	TableID string `json:"table_id" jsonschema:"id of the table holding the cell"`
	Address string `json:"address" jsonschema:"A1-style address of the cell"`
}

// GetCellOutput is the output schema for the get_cell tool.
type GetCellOutput struct {
	TableID string     `json:"table_id"`
	Cell    CellOutput `json:"cell"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the tables that can be evaluated",
	}, s.handleListTables)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_table",
		Description: "Evaluate every formula of a table and the tables it links to",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_cell",
		Description: "Evaluate a table and return a single cell",
	}, s.handleGetCell)
}

// handleListTables handles the list_tables tool invocation.
func (s *Server) handleListTables(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTablesInput,
) (*mcp.CallToolResult, ListTablesOutput, error) {
	tables, err := s.ports.Tables.List(ctx)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}

	output := ListTablesOutput{
		Tables: make([]TableOutput, len(tables)),
		Count:  len(tables),
	}
	for i := range tables {
		output.Tables[i] = TableOutput{ID: tables[i].ID, Name: tables[i].Name}
	}
	return nil, output, nil
}

// handleEvaluate handles the evaluate_table tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	id := strings.TrimSpace(input.TableID)
	if id == "" {
		return nil, EvaluateOutput{}, fmt.Errorf("table_id is required: %w", domain.ErrInvalidInput)
	}

	opts := s.opts
	if input.Strict != nil {
		opts.StrictReferences = *input.Strict
	}
	if input.MaxDepth > 0 {
		opts.MaxDepth = input.MaxDepth
	}

	report, err := s.ports.Workbook.Evaluate(ctx, id, opts)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}
	return nil, toEvaluateOutput(report, input.ErrorsOnly), nil
}

// handleGetCell handles the get_cell tool invocation.
func (s *Server) handleGetCell(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCellInput,
) (*mcp.CallToolResult, GetCellOutput, error) {
	id := strings.TrimSpace(input.TableID)
	if id == "" {
		return nil, GetCellOutput{}, fmt.Errorf("table_id is required: %w", domain.ErrInvalidInput)
	}
	addr, err := domain.ParseAddress(strings.TrimSpace(input.Address))
	if err != nil {
		return nil, GetCellOutput{}, err
	}

	report, err := s.ports.Workbook.Evaluate(ctx, id, s.opts)
	if err != nil {
		return nil, GetCellOutput{}, err
	}
	for _, table := range report.Tables {
		if table.ID != id {
			continue
		}
		for i := range table.Cells {
			if table.Cells[i].Row == addr.Row && table.Cells[i].Column == addr.Column {
				return nil, GetCellOutput{TableID: id, Cell: toCellOutput(&table.Cells[i])}, nil
			}
		}
	}
	return nil, GetCellOutput{}, fmt.Errorf("cell %s!%s: %w", id, addr, domain.ErrNotFound)
}

func toEvaluateOutput(report *domain.EvaluationReport, errorsOnly bool) EvaluateOutput {
	out := EvaluateOutput{
		RootID:       report.RootID,
		Tables:       make([]EvaluatedTableOutput, 0, len(report.Tables)),
		Skipped:      report.Skipped,
		FormulaCount: report.FormulaCount,
		ErrorCount:   report.ErrorCount,
	}
	for _, table := range report.Tables {
		t := EvaluatedTableOutput{
			ID:    table.ID,
			Name:  table.Name,
			Cells: make([]CellOutput, 0, len(table.Cells)),
		}
		for i := range table.Cells {
			if errorsOnly && table.Cells[i].Error == "" {
				continue
			}
			t.Cells = append(t.Cells, toCellOutput(&table.Cells[i]))
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}

func toCellOutput(c *domain.RenderedCell) CellOutput {
	return CellOutput{
		Address: c.Address,
		Kind:    string(c.Kind),
		Value:   c.Value,
		Display: c.Display,
		Formula: c.Formula,
		Target:  c.Target,
		Format:  string(c.Format),
		Error:   c.Error,
	}
}
