package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/sheetlink/internal/core/calc"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// Ensure WorkbookService implements the interface.
var _ driving.WorkbookService = (*WorkbookService)(nil)

// WorkbookService evaluates workbooks and hands them to renderers.
type WorkbookService struct {
	loader    *WorkbookLoader
	renderers driven.RendererFactory
}

// NewWorkbookService creates a new workbook service.
// The renderer factory is optional (can be nil); Export then fails with
// domain.ErrNotImplemented.
func NewWorkbookService(loader *WorkbookLoader, renderers driven.RendererFactory) *WorkbookService {
	return &WorkbookService{
		loader:    loader,
		renderers: renderers,
	}
}

// Evaluate loads rootID with its linked tables and evaluates every cell.
func (s *WorkbookService) Evaluate(
	ctx context.Context, rootID string, opts domain.EvaluationSettings,
) (*domain.EvaluationReport, error) {
	workbook, skipped, err := s.loader.Load(ctx, rootID)
	if err != nil {
		return nil, err
	}

	logger.Section("Evaluate")
	defer logger.Timed("evaluate " + rootID)()
	ec := calc.NewEvalContext(ctx,
		calc.WithMaxDepth(opts.MaxDepth),
		calc.WithStrictReferences(opts.StrictReferences),
	)

	report := &domain.EvaluationReport{
		RootID:  rootID,
		Skipped: skipped,
	}
	for _, table := range workbook.Tables() {
		rendered := renderTable(ec, table, report)
		report.Tables = append(report.Tables, rendered)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", rootID, err)
	}

	logger.Info("Evaluated %d formulas across %d tables, %d failed",
		report.FormulaCount, len(report.Tables), report.ErrorCount)
	return report, nil
}

// Export evaluates rootID and renders the result.
func (s *WorkbookService) Export(
	ctx context.Context, rootID string, opts domain.EvaluationSettings, output domain.OutputSettings,
) (*domain.EvaluationReport, error) {
	if s.renderers == nil {
		return nil, domain.ErrNotImplemented
	}

	report, err := s.Evaluate(ctx, rootID, opts)
	if err != nil {
		return nil, err
	}

	renderer, err := s.renderers.NewRenderer(output)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	logger.Section("Render")
	if err := renderer.Render(ctx, report.Tables); err != nil {
		return nil, fmt.Errorf("render %s: %w", rootID, err)
	}
	return report, nil
}

// renderTable evaluates every cell of table in row-major order.
func renderTable(ec *calc.EvalContext, table *calc.Table, report *domain.EvaluationReport) domain.RenderedTable {
	cells := table.Cells()
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Address().Less(cells[j].Address())
	})

	out := domain.RenderedTable{
		ID:    table.ID(),
		Name:  table.Name(),
		Cells: make([]domain.RenderedCell, 0, len(cells)),
	}
	for _, c := range cells {
		addr := c.Address()
		rc := domain.RenderedCell{
			Address: addr.String(),
			Row:     addr.Row,
			Column:  addr.Column,
			Kind:    c.Kind(),
			Format:  c.Format(),
		}

		switch c := c.(type) {
		case *calc.ValueCell:
			setValue(&rc, c.Value())
		case *calc.ReferenceCell:
			setValue(&rc, c.Value())
			if target, ok := c.Target(); ok {
				rc.Target = target.Target()
			}
		case *calc.FormulaCell:
			report.FormulaCount++
			rc.Formula = c.Formula()
			v, err := c.Evaluate(ec, false)
			if err != nil {
				report.ErrorCount++
				rc.Error = err.Error()
				logger.Debug("%s!%s failed: %v", table.ID(), rc.Address, err)
				break
			}
			setValue(&rc, v)
		}
		out.Cells = append(out.Cells, rc)
	}
	return out
}

func setValue(rc *domain.RenderedCell, v formula.Value) {
	rc.Value = v.Native()
	rc.Display = v.String()
}
