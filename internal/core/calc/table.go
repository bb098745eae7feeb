package calc

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
)

// Table is an immutable set of cells with an address index.
type Table struct {
	id       string
	name     string
	cells    []Cell
	index    map[domain.Address]Cell
	workbook *Workbook
}

// Result is the outcome of evaluating one formula cell.
type Result struct {
	Cell  *FormulaCell
	Value formula.Value
	Err   error
}

// NewTable builds a table from its definition. Empty cells are skipped and
// unknown cell types are read as values. Coordinates outside the sheet fail
// with domain.ErrInvalidAddress, two cells at one address with
// domain.ErrInvalidInput.
func NewTable(def domain.TableDefinition) (*Table, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("%w: table id is required", domain.ErrInvalidInput)
	}

	t := &Table{
		id:    def.ID,
		name:  def.Name,
		cells: make([]Cell, 0, len(def.Cells)),
		index: make(map[domain.Address]Cell, len(def.Cells)),
	}
	for i := range def.Cells {
		cd := &def.Cells[i]
		if cd.Type == domain.CellTypeEmpty {
			continue
		}
		addr := cd.Address()
		if !addr.Valid() {
			return nil, fmt.Errorf("%w: table %s cell %d at row %d column %d", domain.ErrInvalidAddress, def.ID, i, cd.Row, cd.Column)
		}
		if _, dup := t.index[addr]; dup {
			return nil, fmt.Errorf("%w: table %s has two cells at %s", domain.ErrInvalidInput, def.ID, addr)
		}

		var c Cell
		switch cd.Type {
		case domain.CellTypeFormula:
			c = newFormulaCell(t, addr, formulaText(cd.Formula), cd.Format)
		case domain.CellTypeLink:
			c = newReferenceCell(addr, cd.References, cd.Format)
		default:
			c = newValueCell(addr, cd.Value, cd.Format)
		}
		t.cells = append(t.cells, c)
		t.index[addr] = c
	}
	return t, nil
}

// ID returns the table id.
func (t *Table) ID() string { return t.id }

// Name returns the display name, falling back to the id.
func (t *Table) Name() string {
	if t.name == "" {
		return t.id
	}
	return t.name
}

// Len returns the number of non-empty cells.
func (t *Table) Len() int { return len(t.cells) }

// Cells returns the cells in input order.
func (t *Table) Cells() []Cell {
	return append([]Cell(nil), t.cells...)
}

// Lookup returns the cell at addr.
func (t *Table) Lookup(addr domain.Address) (Cell, bool) {
	c, ok := t.index[addr]
	return c, ok
}

// FormulaCells returns the formula cells in row-major order.
func (t *Table) FormulaCells() []*FormulaCell {
	var out []*FormulaCell
	for _, c := range t.cells {
		if fc, ok := c.(*FormulaCell); ok {
			out = append(out, fc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].addr.Less(out[j].addr) })
	return out
}

// LinkedTableIDs returns the sorted ids of tables named by link cells.
func (t *Table) LinkedTableIDs() []string {
	seen := make(map[string]struct{})
	for _, c := range t.cells {
		rc, ok := c.(*ReferenceCell)
		if !ok {
			continue
		}
		for _, ref := range rc.refs {
			if ref.TableID != "" {
				seen[ref.TableID] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluate returns the value of the cell at addr, computing formulas as
// needed. A missing cell fails with domain.ErrNotFound.
func (t *Table) Evaluate(ec *EvalContext, addr domain.Address) (formula.Value, error) {
	v, found, err := t.valueAt(ec, addr)
	if err != nil {
		return formula.Value{}, err
	}
	if !found {
		return formula.Value{}, fmt.Errorf("%w: cell %s!%s", domain.ErrNotFound, t.id, addr)
	}
	return v, nil
}

// EvaluateAll evaluates every formula cell in row-major order. A failing
// cell does not stop the others.
func (t *Table) EvaluateAll(ec *EvalContext) []Result {
	cells := t.FormulaCells()
	results := make([]Result, 0, len(cells))
	for _, fc := range cells {
		v, err := fc.Evaluate(ec, false)
		results = append(results, Result{Cell: fc, Value: v, Err: err})
	}
	return results
}

// Reset returns every formula cell to Pending.
func (t *Table) Reset() {
	for _, c := range t.cells {
		if fc, ok := c.(*FormulaCell); ok {
			fc.Reset()
		}
	}
}

// valueAt reads any cell variant. found is false when addr holds no cell.
func (t *Table) valueAt(ec *EvalContext, addr domain.Address) (formula.Value, bool, error) {
	c, ok := t.index[addr]
	if !ok {
		return formula.Empty(), false, nil
	}
	switch c := c.(type) {
	case *ValueCell:
		return c.Value(), true, nil
	case *ReferenceCell:
		return c.Value(), true, nil
	case *FormulaCell:
		v, err := c.Evaluate(ec, false)
		return v, true, err
	default:
		panic(fmt.Sprintf("calc: unknown cell type %T", c))
	}
}

// sum adds the numeric values of cells. Missing cells count as zero and
// non-numeric values are skipped. The result is exact when any member is.
func (t *Table) sum(ec *EvalContext, cells []domain.Address) (formula.Value, error) {
	total := decimal.Zero
	var approx float64
	exactSum := false
	for _, addr := range cells {
		v, _, err := t.valueAt(ec, addr)
		if err != nil {
			return formula.Value{}, err
		}
		if !v.IsNumeric() {
			continue
		}
		if v.Kind() == formula.KindDecimal {
			exactSum = true
		}
		d, _ := v.Decimal()
		total = total.Add(d)
		f, _ := v.Float()
		approx += f
	}
	if exactSum {
		return formula.Decimal(total), nil
	}
	return formula.Number(approx), nil
}

func (t *Table) resolveExternal(key string) (*Table, domain.Address, error) {
	if t.workbook == nil {
		return nil, domain.Address{}, fmt.Errorf("%w: table %s is not part of a workbook", domain.ErrNotFound, t.id)
	}
	return t.workbook.Resolve(key)
}
