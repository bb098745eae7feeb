package driving

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// WorkbookService evaluates a table together with every table it links to.
type WorkbookService interface {
	// Evaluate loads the root table and its linked tables, evaluates every
	// cell and returns the rendered view. Cell failures are reported in the
	// report, not as an error; the error is for load failures of the root.
	Evaluate(ctx context.Context, rootID string, opts domain.EvaluationSettings) (*domain.EvaluationReport, error)

	// Export evaluates like Evaluate and hands the tables to a renderer
	// configured by output.
	Export(ctx context.Context, rootID string, opts domain.EvaluationSettings, output domain.OutputSettings) (*domain.EvaluationReport, error)
}
