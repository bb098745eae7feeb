package calc

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// EvalContext carries the state of one evaluation run: the stack of cells
// being computed, shared by every table the run reaches, plus the run's
// limits. Create one per top-level evaluation and pass it down; cells never
// keep it.
type EvalContext struct {
	ctx      context.Context
	maxDepth int
	strict   bool

	stack   []string
	onStack map[string]struct{}
}

// EvalOption configures an EvalContext.
type EvalOption func(*EvalContext)

// WithMaxDepth bounds the number of nested formula evaluations.
// Values below one keep the default.
func WithMaxDepth(n int) EvalOption {
	return func(ec *EvalContext) {
		if n > 0 {
			ec.maxDepth = n
		}
	}
}

// WithStrictReferences makes references to missing cells fail with
// domain.ErrDanglingReference instead of reading as empty.
func WithStrictReferences(strict bool) EvalOption {
	return func(ec *EvalContext) {
		ec.strict = strict
	}
}

// NewEvalContext creates a context for one evaluation run.
// A nil ctx is treated as context.Background.
func NewEvalContext(ctx context.Context, opts ...EvalOption) *EvalContext {
	if ctx == nil {
		ctx = context.Background()
	}
	ec := &EvalContext{
		ctx:      ctx,
		maxDepth: domain.DefaultMaxDepth,
		onStack:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// Context returns the context the run observes for cancellation.
func (ec *EvalContext) Context() context.Context { return ec.ctx }

// MaxDepth returns the nesting budget.
func (ec *EvalContext) MaxDepth() int { return ec.maxDepth }

// Strict reports whether dangling references fail.
func (ec *EvalContext) Strict() bool { return ec.strict }

// Depth returns the number of cells currently being computed.
func (ec *EvalContext) Depth() int { return len(ec.stack) }

// Stack returns a copy of the keys being computed, outermost first.
func (ec *EvalContext) Stack() []string {
	return append([]string(nil), ec.stack...)
}

// Contains reports whether key is being computed.
func (ec *EvalContext) Contains(key string) bool {
	_, ok := ec.onStack[key]
	return ok
}

func (ec *EvalContext) push(key string) error {
	if err := ec.ctx.Err(); err != nil {
		return fmt.Errorf("evaluation of %s stopped: %w", key, err)
	}
	if len(ec.stack) >= ec.maxDepth {
		return fmt.Errorf("%w: %s is nested %d levels deep", domain.ErrDepthExceeded, key, len(ec.stack)+1)
	}
	ec.stack = append(ec.stack, key)
	ec.onStack[key] = struct{}{}
	return nil
}

func (ec *EvalContext) pop(key string) {
	delete(ec.onStack, key)
	for i := len(ec.stack) - 1; i >= 0; i-- {
		if ec.stack[i] == key {
			ec.stack = append(ec.stack[:i], ec.stack[i+1:]...)
			return
		}
	}
}
