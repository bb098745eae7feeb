package calc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

func at(ref string) domain.Address {
	return domain.MustParseAddress(ref)
}

func val(ref string, v any) domain.CellDefinition {
	a := at(ref)
	return domain.CellDefinition{Row: a.Row, Column: a.Column, Type: domain.CellTypeValue, Value: v}
}

func fx(ref, text string) domain.CellDefinition {
	a := at(ref)
	return domain.CellDefinition{Row: a.Row, Column: a.Column, Type: domain.CellTypeFormula, Formula: text}
}

func formatted(cd domain.CellDefinition, format domain.FormatType) domain.CellDefinition {
	cd.Format = format
	return cd
}

func link(ref string, refs ...domain.CellReference) domain.CellDefinition {
	a := at(ref)
	return domain.CellDefinition{Row: a.Row, Column: a.Column, Type: domain.CellTypeLink, References: refs}
}

func mustTable(t *testing.T, id, name string, cells ...domain.CellDefinition) *Table {
	t.Helper()
	table, err := NewTable(domain.TableDefinition{ID: id, Name: name, Cells: cells})
	require.NoError(t, err)
	return table
}

func mustWorkbook(t *testing.T, tables ...*Table) *Workbook {
	t.Helper()
	w, err := NewWorkbook(tables...)
	require.NoError(t, err)
	return w
}

func formulaAt(t *testing.T, table *Table, ref string) *FormulaCell {
	t.Helper()
	c, ok := table.Lookup(at(ref))
	require.True(t, ok, "no cell at %s", ref)
	fc, ok := c.(*FormulaCell)
	require.True(t, ok, "%s is not a formula cell", ref)
	return fc
}
