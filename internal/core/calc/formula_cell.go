package calc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
)

// State is the evaluation state of a formula cell.
type State int

// Formula cell states. A cell moves Pending -> Calculating -> Completed or
// Error, and back to Pending on Reset.
const (
	StatePending State = iota
	StateCalculating
	StateCompleted
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCalculating:
		return "calculating"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// kinds are the sentinels an EvaluationError may carry, most specific first.
var kinds = []error{
	domain.ErrSyntax,
	domain.ErrCircularDependency,
	domain.ErrDepthExceeded,
	domain.ErrDanglingReference,
	domain.ErrUnsupportedExpression,
	domain.ErrInvalidAddress,
	context.Canceled,
	context.DeadlineExceeded,
	domain.ErrEvaluation,
}

// FormulaCell computes its value from an expression over other cells.
type FormulaCell struct {
	addr   domain.Address
	format domain.FormatType
	table  *Table

	raw       string
	expr      string
	deps      formula.Dependencies
	syntaxErr error

	state       State
	value       formula.Value
	err         error
	evaluations int
}

func newFormulaCell(table *Table, addr domain.Address, text string, format domain.FormatType) *FormulaCell {
	expr := strings.TrimPrefix(strings.TrimSpace(text), "=")
	return &FormulaCell{
		addr:      addr,
		format:    format,
		table:     table,
		raw:       "=" + expr,
		expr:      expr,
		deps:      formula.Extract(expr),
		syntaxErr: formula.CheckSyntax(expr),
	}
}

func (c *FormulaCell) Address() domain.Address   { return c.addr }
func (c *FormulaCell) Kind() domain.CellKind     { return domain.CellKindFormula }
func (c *FormulaCell) Format() domain.FormatType { return c.format }
func (c *FormulaCell) cell()                     {}

// Formula returns the "=" prefixed formula text.
func (c *FormulaCell) Formula() string { return c.raw }

// Expression returns the formula text without the leading "=".
func (c *FormulaCell) Expression() string { return c.expr }

// Dependencies returns the static reference set of the expression.
func (c *FormulaCell) Dependencies() formula.Dependencies { return c.deps }

// SyntaxError returns the stored result of the static syntax check.
func (c *FormulaCell) SyntaxError() error { return c.syntaxErr }

// Key returns the table-qualified address used on the evaluation stack.
func (c *FormulaCell) Key() string { return c.table.id + "!" + c.addr.String() }

// State returns the evaluation state.
func (c *FormulaCell) State() State { return c.state }

// Cached returns the last result without evaluating.
func (c *FormulaCell) Cached() (formula.Value, error) { return c.value, c.err }

// Evaluations counts how many times the expression was actually computed.
func (c *FormulaCell) Evaluations() int { return c.evaluations }

// Reset returns the cell to Pending and drops its cached result. Cells that
// depend on this one are not touched.
func (c *FormulaCell) Reset() {
	if c.state == StateCalculating {
		return
	}
	c.state = StatePending
	c.value = formula.Value{}
	c.err = nil
}

// Evaluate returns the cell value, computing it if needed. A Completed or
// Error cell answers from its cache unless force is set; force applies to
// this cell only, dependencies still use their caches.
//
// Every failure is a *domain.EvaluationError. Failures raised by another
// cell keep that cell's address. Depth budget and cancellation failures
// leave the cell Pending, so a later run with other limits recomputes it.
func (c *FormulaCell) Evaluate(ec *EvalContext, force bool) (formula.Value, error) {
	if !force {
		switch c.state {
		case StateCompleted:
			return c.value, nil
		case StateError:
			return formula.Value{}, c.err
		}
	}

	key := c.Key()
	if c.state == StateCalculating || ec.Contains(key) {
		return formula.Value{}, c.errorf(domain.ErrCircularDependency, "circular dependency: %s", key)
	}

	if err := ec.push(key); err != nil {
		return formula.Value{}, c.wrap(err)
	}
	defer ec.pop(key)

	c.state = StateCalculating
	c.evaluations++

	value, err := c.compute(ec)
	if err != nil {
		if runLimited(err) {
			c.state = StatePending
			return formula.Value{}, c.wrap(err)
		}
		return formula.Value{}, c.fail(err)
	}
	if c.format.RequiresExactDecimal() {
		value = exact(value)
	}
	c.value, c.err, c.state = value, nil, StateCompleted
	return value, nil
}

func (c *FormulaCell) compute(ec *EvalContext) (formula.Value, error) {
	if c.syntaxErr != nil {
		return formula.Value{}, c.syntaxErr
	}

	if ref, ok := formula.SoleReference(c.expr); ok && !ref.IsRange() {
		v, found, err := c.resolve(ec, ref)
		if err != nil {
			return formula.Value{}, err
		}
		if !found {
			return formula.Empty(), nil
		}
		return v, nil
	}

	refs := formula.References(c.expr)

	sums := make(map[string]formula.Value)
	for _, ref := range refs {
		if !ref.IsRange() || !ref.InSum {
			continue
		}
		key := formula.RangeKey(ref.Text)
		cells, ok := c.deps.Ranges[key]
		if _, done := sums[key]; done || !ok {
			continue
		}
		sum, err := c.table.sum(ec, cells)
		if err != nil {
			return formula.Value{}, err
		}
		sums[key] = sum
	}

	externals := make(map[string]formula.Value)
	for _, ref := range refs {
		if !ref.IsExternal() {
			continue
		}
		key := formula.ExternalKey(ref.Text)
		if _, done := externals[key]; done {
			continue
		}
		v, _, err := c.resolve(ec, ref)
		if err != nil {
			return formula.Value{}, err
		}
		externals[key] = v
	}

	direct := make(map[domain.Address]formula.Value, len(c.deps.Direct))
	for _, addr := range c.deps.Direct {
		v, found, err := c.table.valueAt(ec, addr)
		if err != nil {
			return formula.Value{}, err
		}
		_, written := c.deps.Tokens[addr]
		if !found && written && ec.Strict() {
			return formula.Value{}, fmt.Errorf("%w: %s!%s", domain.ErrDanglingReference, c.table.id, addr)
		}
		direct[addr] = v
	}

	text := formula.Substitute(c.expr, func(ref formula.Reference) (string, bool) {
		switch {
		case ref.IsExternal():
			v, ok := externals[formula.ExternalKey(ref.Text)]
			return v.Literal(), ok
		case ref.IsRange():
			v, ok := sums[formula.RangeKey(ref.Text)]
			return v.Literal(), ok && ref.InSum
		}
		addr, err := domain.ParseAddress(ref.Text)
		if err != nil {
			return "", false
		}
		v, ok := direct[addr]
		return v.Literal(), ok
	})

	return formula.Evaluate(text)
}

// resolve reads the cell a single or external reference names. found is
// false for a dangling reference in lenient mode. A qualified span that is
// not a single cell fails whatever the mode.
func (c *FormulaCell) resolve(ec *EvalContext, ref formula.Reference) (formula.Value, bool, error) {
	var (
		table = c.table
		addr  domain.Address
		err   error
	)
	if ref.IsExternal() {
		table, addr, err = c.table.resolveExternal(formula.ExternalKey(ref.Text))
		if errors.Is(err, domain.ErrInvalidAddress) {
			// Qualified ranges and malformed cells are not references to a
			// missing table.
			return formula.Value{}, false, fmt.Errorf("%w: %s is not a single cell reference", domain.ErrUnsupportedExpression, ref.Text)
		}
	} else {
		addr, err = domain.ParseAddress(ref.Text)
	}
	if err != nil {
		if ec.Strict() {
			return formula.Value{}, false, fmt.Errorf("%w: %s: %v", domain.ErrDanglingReference, ref.Text, err)
		}
		return formula.Empty(), false, nil
	}

	v, found, err := table.valueAt(ec, addr)
	if err != nil {
		return formula.Value{}, false, err
	}
	if !found && ec.Strict() {
		return formula.Value{}, false, fmt.Errorf("%w: %s!%s", domain.ErrDanglingReference, table.id, addr)
	}
	return v, found, nil
}

// runLimited reports whether err comes from the limits of one run rather
// than from the formulas. Such failures are not cached.
func runLimited(err error) bool {
	return errors.Is(err, domain.ErrDepthExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// fail moves the cell to Error and caches err.
func (c *FormulaCell) fail(err error) error {
	wrapped := c.wrap(err)
	c.value, c.err, c.state = formula.Value{}, wrapped, StateError
	return wrapped
}

// wrap converts err to an EvaluationError for this cell unless it already
// is one.
func (c *FormulaCell) wrap(err error) error {
	var evalErr *domain.EvaluationError
	if errors.As(err, &evalErr) {
		return evalErr
	}
	kind := domain.ErrEvaluation
	for _, k := range kinds {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return domain.NewEvaluationError(c.table.id, c.addr.String(), kind, err.Error())
}

func (c *FormulaCell) errorf(kind error, format string, args ...any) error {
	return domain.NewEvaluationError(c.table.id, c.addr.String(), kind, fmt.Sprintf(format, args...))
}
