package driven

import (
	"context"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// Renderer writes evaluated tables to an output format.
// The first table is the root of the evaluation run.
type Renderer interface {
	Render(ctx context.Context, tables []domain.RenderedTable) error
}

// RendererFactory creates a renderer for one export.
type RendererFactory interface {
	NewRenderer(output domain.OutputSettings) (Renderer, error)
}
