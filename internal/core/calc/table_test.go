package calc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

func TestNewTable_BuildsCellVariants(t *testing.T) {
	table := mustTable(t, "t1", "Budget",
		val("A1", 10),
		fx("A2", "A1*2"),
		link("A3", domain.CellReference{TableID: "t2", CellAddress: "B3"}),
		domain.CellDefinition{Row: 4, Column: 1, Type: domain.CellTypeEmpty},
		domain.CellDefinition{Row: 5, Column: 1, Type: "mystery", Value: "x"},
	)

	assert.Equal(t, "t1", table.ID())
	assert.Equal(t, "Budget", table.Name())
	assert.Equal(t, 4, table.Len())

	c, ok := table.Lookup(at("A1"))
	require.True(t, ok)
	assert.IsType(t, &ValueCell{}, c)

	fc := formulaAt(t, table, "A2")
	assert.Equal(t, "=A1*2", fc.Formula())
	assert.Equal(t, "A1*2", fc.Expression())
	assert.Equal(t, []domain.Address{at("A1")}, fc.Dependencies().Direct)

	c, ok = table.Lookup(at("A3"))
	require.True(t, ok)
	assert.Equal(t, domain.CellKindReference, c.Kind())

	_, ok = table.Lookup(at("A4"))
	assert.False(t, ok, "empty cells are skipped")

	c, ok = table.Lookup(at("A5"))
	require.True(t, ok)
	assert.IsType(t, &ValueCell{}, c, "unknown types read as values")
}

func TestNewTable_PreservesInputOrder(t *testing.T) {
	table := mustTable(t, "t1", "", val("C3", 1), val("A1", 2), val("B2", 3))

	var got []string
	for _, c := range table.Cells() {
		got = append(got, c.Address().String())
	}
	assert.Equal(t, []string{"C3", "A1", "B2"}, got)
}

func TestNewTable_RejectsOutOfBounds(t *testing.T) {
	for _, cd := range []domain.CellDefinition{
		{Row: 0, Column: 1, Type: domain.CellTypeValue},
		{Row: 1, Column: 0, Type: domain.CellTypeValue},
		{Row: domain.MaxRows + 1, Column: 1, Type: domain.CellTypeValue},
		{Row: 1, Column: domain.MaxColumns + 1, Type: domain.CellTypeFormula},
	} {
		_, err := NewTable(domain.TableDefinition{ID: "t1", Cells: []domain.CellDefinition{cd}})
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	}
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable(domain.TableDefinition{ID: "t1", Cells: []domain.CellDefinition{val("A1", 1), fx("A1", "=2")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewTable_RequiresID(t *testing.T) {
	_, err := NewTable(domain.TableDefinition{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTable_LinkedTableIDs(t *testing.T) {
	table := mustTable(t, "t1", "",
		link("A1", domain.CellReference{TableID: "t3", CellAddress: "A1"}, domain.CellReference{TableID: "t2", CellAddress: "B2"}),
		link("A2", domain.CellReference{TableID: "t2", CellAddress: "C1"}),
		val("A3", 1),
	)

	assert.Equal(t, []string{"t2", "t3"}, table.LinkedTableIDs())
	assert.Empty(t, mustTable(t, "t2", "", val("A1", 1)).LinkedTableIDs())
}

func TestReferenceCell_Display(t *testing.T) {
	table := mustTable(t, "t1", "",
		link("A1", domain.CellReference{TableID: "t2", CellAddress: "B3", SheetName: "Info"}),
		link("A2"),
	)

	v, err := evalAt(t, table, "A1")
	require.NoError(t, err)
	assert.Equal(t, "LINK:t2!B3", v.String())

	v, err = evalAt(t, table, "A2")
	require.NoError(t, err)
	assert.Equal(t, ReferenceErrorText, v.String())

	c, _ := table.Lookup(at("A1"))
	target, ok := c.(*ReferenceCell).Target()
	require.True(t, ok)
	assert.Equal(t, "'Info'!B3", target.String())
}

func TestTable_EvaluateMissingCell(t *testing.T) {
	table := mustTable(t, "t1", "", val("A1", 1))

	_, err := evalAt(t, table, "Z9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTable_EvaluateAllCollectsErrors(t *testing.T) {
	table := mustTable(t, "t1", "",
		fx("B1", "=A1+1"),
		fx("A2", "=1/0"),
		val("A1", 1),
		fx("A1000", "=B1*10"),
	)

	results := table.EvaluateAll(NewEvalContext(context.Background()))
	require.Len(t, results, 3)

	assert.Equal(t, "B1", results[0].Cell.Address().String())
	require.NoError(t, results[0].Err)
	requireNumber(t, 2, results[0].Value)

	assert.Equal(t, "A2", results[1].Cell.Address().String())
	assert.ErrorIs(t, results[1].Err, domain.ErrEvaluation)

	assert.Equal(t, "A1000", results[2].Cell.Address().String())
	require.NoError(t, results[2].Err)
	requireNumber(t, 20, results[2].Value)
}
