package calc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
)

func evalAt(t *testing.T, table *Table, ref string, opts ...EvalOption) (formula.Value, error) {
	t.Helper()
	return table.Evaluate(NewEvalContext(context.Background(), opts...), at(ref))
}

func requireNumber(t *testing.T, want float64, v formula.Value) {
	t.Helper()
	require.True(t, v.IsNumeric(), "got %s %q", v.Kind(), v)
	f, _ := v.Float()
	assert.InDelta(t, want, f, 1e-9)
}

func TestFormulaCell_SumOfRange(t *testing.T) {
	table := mustTable(t, "t1", "Budget",
		val("B2", 1000),
		val("B3", 500),
		fx("B4", "=SUM(B2:B3)"),
	)

	v, err := evalAt(t, table, "B4")
	require.NoError(t, err)
	requireNumber(t, 1500, v)
	assert.Equal(t, "1500", v.String())
}

func TestFormulaCell_DanglingReferencesAreLenient(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("B2", 1000),
		val("B3", 500),
		fx("B10", "=SUM(B2:B9)"),
		fx("C1", "=A1+5"),
		fx("C2", "=A1"),
		fx("C3", "=SUM($B$2:B$9)*2"),
	)

	v, err := evalAt(t, table, "B10")
	require.NoError(t, err)
	requireNumber(t, 1500, v)

	v, err = evalAt(t, table, "C1")
	require.NoError(t, err)
	requireNumber(t, 5, v)

	v, err = evalAt(t, table, "C2")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	v, err = evalAt(t, table, "C3")
	require.NoError(t, err)
	requireNumber(t, 3000, v)
}

func TestFormulaCell_StrictReferences(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("B2", 1000),
		fx("B10", "=SUM(B2:B9)"),
		fx("C1", "=A1+5"),
		fx("C2", "=A1"),
	)

	v, err := evalAt(t, table, "B10", WithStrictReferences(true))
	require.NoError(t, err)
	requireNumber(t, 1000, v)

	for _, ref := range []string{"C1", "C2"} {
		_, err := evalAt(t, table, ref, WithStrictReferences(true))
		assert.ErrorIs(t, err, domain.ErrDanglingReference, ref)
		assert.ErrorIs(t, err, domain.ErrEvaluation, ref)
	}
}

func TestFormulaCell_AbsoluteMarkerVariants(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", 2),
		val("A10", 100),
		fx("B1", "=$A$1+A$1+$A1+A1"),
		fx("B2", "=A1*A10"),
	)

	v, err := evalAt(t, table, "B1")
	require.NoError(t, err)
	requireNumber(t, 8, v)

	v, err = evalAt(t, table, "B2")
	require.NoError(t, err)
	requireNumber(t, 200, v)
}

func TestFormulaCell_NegativeValuesSubstituteSafely(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", -3),
		fx("B1", "=2-A1"),
		fx("B2", "=A1**2"),
	)

	v, err := evalAt(t, table, "B1")
	require.NoError(t, err)
	requireNumber(t, 5, v)

	v, err = evalAt(t, table, "B2")
	require.NoError(t, err)
	requireNumber(t, 9, v)
}

func TestFormulaCell_SingleReferenceKeepsType(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", "hello"),
		val("A2", true),
		fx("B1", "=A1"),
		fx("B2", "=$A$2"),
	)

	v, err := evalAt(t, table, "B1")
	require.NoError(t, err)
	assert.True(t, v.Equal(formula.Text("hello")))

	v, err = evalAt(t, table, "B2")
	require.NoError(t, err)
	assert.True(t, v.Equal(formula.Bool(true)))
}

func TestFormulaCell_UnparseableTextDegrades(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("B2", 1),
		val("B3", 2),
		fx("A1", "=Hello world"),
		fx("A2", "=AVERAGE(B2:B3)"),
	)

	v, err := evalAt(t, table, "A1")
	require.NoError(t, err)
	assert.Equal(t, formula.KindText, v.Kind())
	assert.Equal(t, "Hello world", v.String())

	v, err = evalAt(t, table, "A2")
	require.NoError(t, err)
	assert.Equal(t, "AVERAGE(B2:B3)", v.String())
}

func TestFormulaCell_SelfReference(t *testing.T) {
	table := mustTable(t, "t1", "", fx("A1", "=A1"))

	_, err := evalAt(t, table, "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircularDependency)

	var evalErr *domain.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "t1!A1", evalErr.Key())
	assert.Equal(t, StateError, formulaAt(t, table, "A1").State())
}

func TestFormulaCell_CycleWithinTable(t *testing.T) {
	table := mustTable(t, "t1", "",
		fx("A1", "=B1+1"),
		fx("B1", "=C1+1"),
		fx("C1", "=A1+1"),
	)

	_, err := evalAt(t, table, "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircularDependency)
	assert.Contains(t, err.Error(), "t1!A1")

	for _, ref := range []string{"A1", "B1", "C1"} {
		assert.Equal(t, StateError, formulaAt(t, table, ref).State(), ref)
	}
}

func TestFormulaCell_CycleAcrossTables(t *testing.T) {
	t1 := mustTable(t, "t1", "Budget", fx("A1", "=t2!A1+1"))
	t2 := mustTable(t, "t2", "Info", fx("A1", "='Budget'!A1*2"))
	mustWorkbook(t, t1, t2)

	_, err := evalAt(t, t1, "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircularDependency)

	var evalErr *domain.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "t1!A1", evalErr.Key())
}

func TestFormulaCell_ExternalReferences(t *testing.T) {
	t1 := mustTable(t, "t1", "Budget",
		fx("A1", "=t2!A1*2"),
		fx("A2", "='Info'!$A$1+1"),
		fx("A3", "=missing!A1+1"),
		fx("A4", "=t2!B7"),
	)
	t2 := mustTable(t, "t2", "Info", val("A1", 21))
	mustWorkbook(t, t1, t2)

	v, err := evalAt(t, t1, "A1")
	require.NoError(t, err)
	requireNumber(t, 42, v)

	v, err = evalAt(t, t1, "A2")
	require.NoError(t, err)
	requireNumber(t, 22, v)

	v, err = evalAt(t, t1, "A3")
	require.NoError(t, err)
	requireNumber(t, 1, v)

	v, err = evalAt(t, t1, "A4")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = evalAt(t, t1, "A3", WithStrictReferences(true))
	require.NoError(t, err, "cached result is reused")
}

func TestFormulaCell_Memoisation(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", 1),
		fx("B1", "=A1*2"),
		fx("C1", "=B1+B1"),
	)
	ec := NewEvalContext(context.Background())
	c1 := formulaAt(t, table, "C1")
	b1 := formulaAt(t, table, "B1")

	for i := 0; i < 3; i++ {
		v, err := c1.Evaluate(ec, false)
		require.NoError(t, err)
		requireNumber(t, 4, v)
	}
	assert.Equal(t, 1, c1.Evaluations())
	assert.Equal(t, 1, b1.Evaluations())
	assert.Equal(t, StateCompleted, c1.State())

	_, err := c1.Evaluate(ec, true)
	require.NoError(t, err)
	assert.Equal(t, 2, c1.Evaluations())
	assert.Equal(t, 1, b1.Evaluations(), "force applies to the target only")
}

func TestFormulaCell_ErrorIsCachedUntilReset(t *testing.T) {
	table := mustTable(t, "t1", "", fx("A1", "=1/0"))
	ec := NewEvalContext(context.Background())
	a1 := formulaAt(t, table, "A1")

	_, first := a1.Evaluate(ec, false)
	require.Error(t, first)
	assert.ErrorIs(t, first, domain.ErrEvaluation)

	_, second := a1.Evaluate(ec, false)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, a1.Evaluations())

	a1.Reset()
	assert.Equal(t, StatePending, a1.State())
	v, err := a1.Cached()
	assert.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = a1.Evaluate(ec, false)
	require.Error(t, err)
	assert.Equal(t, 2, a1.Evaluations())
}

func TestFormulaCell_ResetDoesNotCascade(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", 1),
		fx("B1", "=A1+1"),
		fx("C1", "=B1+1"),
	)
	_, err := evalAt(t, table, "C1")
	require.NoError(t, err)

	formulaAt(t, table, "B1").Reset()
	assert.Equal(t, StatePending, formulaAt(t, table, "B1").State())
	assert.Equal(t, StateCompleted, formulaAt(t, table, "C1").State())

	table.Reset()
	assert.Equal(t, StatePending, formulaAt(t, table, "C1").State())
}

func TestFormulaCell_ErrorsKeepOriginatingAddress(t *testing.T) {
	table := mustTable(t, "t1", "",
		fx("A1", "=SQRT(-1)"),
		fx("B1", "=A1+1"),
	)

	_, err := evalAt(t, table, "B1")
	require.Error(t, err)

	var evalErr *domain.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "A1", evalErr.Address)
	assert.Contains(t, evalErr.Message, "SQRT")
	assert.Equal(t, StateError, formulaAt(t, table, "B1").State())
}

func TestFormulaCell_Sandbox(t *testing.T) {
	table := mustTable(t, "t1", "",
		fx("A1", "=__import__('os').system('id')"),
		fx("A2", "=open('/etc/passwd')"),
		fx("A3", "=A1.real"),
	)

	for _, ref := range []string{"A1", "A2", "A3"} {
		_, err := evalAt(t, table, ref)
		require.Error(t, err, ref)
		assert.ErrorIs(t, err, domain.ErrUnsupportedExpression, ref)
		assert.ErrorIs(t, err, domain.ErrEvaluation, ref)
	}
}

func TestFormulaCell_SyntaxErrorSurfacesOnEvaluation(t *testing.T) {
	table := mustTable(t, "t1", "", fx("A1", "=(1+2"))
	a1 := formulaAt(t, table, "A1")

	assert.ErrorIs(t, a1.SyntaxError(), domain.ErrSyntax)
	assert.Equal(t, StatePending, a1.State())

	_, err := evalAt(t, table, "A1")
	assert.ErrorIs(t, err, domain.ErrSyntax)
	assert.Equal(t, StateError, a1.State())
}

func TestFormulaCell_ExactDecimalFormats(t *testing.T) {
	table := mustTable(t, "t1", "",
		val("A1", 1),
		val("B1", 2),
		formatted(fx("C1", "=A1/B1"), domain.FormatPercentage),
		formatted(fx("C2", "=0.1+0.2"), domain.FormatCurrency),
		formatted(val("C3", 19.99), domain.FormatCurrency),
		fx("C4", "=0.1+0.2"),
	)

	v, err := evalAt(t, table, "C1")
	require.NoError(t, err)
	assert.Equal(t, formula.KindDecimal, v.Kind())
	assert.Equal(t, "0.5", v.String())

	v, err = evalAt(t, table, "C2")
	require.NoError(t, err)
	assert.Equal(t, "0.3", v.String())

	v, err = evalAt(t, table, "C3")
	require.NoError(t, err)
	assert.Equal(t, formula.KindDecimal, v.Kind())
	assert.Equal(t, "19.99", v.String())

	v, err = evalAt(t, table, "C4")
	require.NoError(t, err)
	assert.Equal(t, formula.KindNumber, v.Kind())
}

func TestFormulaCell_DepthBudget(t *testing.T) {
	cells := []domain.CellDefinition{val("A11", 0)}
	for row := 1; row <= 10; row++ {
		cells = append(cells, fx(domain.MustAddress(row, 1).String(), "="+domain.MustAddress(row+1, 1).String()+"+1"))
	}

	shallow := mustTable(t, "t1", "", cells...)
	_, err := evalAt(t, shallow, "A1", WithMaxDepth(5))
	assert.ErrorIs(t, err, domain.ErrDepthExceeded)

	deep := mustTable(t, "t1", "", cells...)
	v, err := evalAt(t, deep, "A1")
	require.NoError(t, err)
	requireNumber(t, 10, v)
}

func TestFormulaCell_DepthFailureIsNotCached(t *testing.T) {
	cells := []domain.CellDefinition{val("A11", 0)}
	for row := 1; row <= 10; row++ {
		cells = append(cells, fx(domain.MustAddress(row, 1).String(), "="+domain.MustAddress(row+1, 1).String()+"+1"))
	}
	table := mustTable(t, "t1", "", cells...)

	_, err := evalAt(t, table, "A1", WithMaxDepth(5))
	require.ErrorIs(t, err, domain.ErrDepthExceeded)
	assert.Equal(t, StatePending, formulaAt(t, table, "A1").State())
	assert.Equal(t, StatePending, formulaAt(t, table, "A6").State())

	v, err := evalAt(t, table, "A6")
	require.NoError(t, err)
	requireNumber(t, 5, v)

	v, err = evalAt(t, table, "A1")
	require.NoError(t, err)
	requireNumber(t, 10, v)
}

func TestFormulaCell_CancelledContext(t *testing.T) {
	table := mustTable(t, "t1", "", fx("A1", "=1+1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := table.Evaluate(NewEvalContext(ctx), at("A1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatePending, formulaAt(t, table, "A1").State())
}

func TestFormulaCell_StackIsEmptyAfterRun(t *testing.T) {
	table := mustTable(t, "t1", "",
		fx("A1", "=B1+1"),
		fx("B1", "=1/0"),
	)
	ec := NewEvalContext(context.Background())

	_, err := table.Evaluate(ec, at("A1"))
	require.Error(t, err)
	assert.Empty(t, ec.Stack())
	assert.Equal(t, 0, ec.Depth())
}
