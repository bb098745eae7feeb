package calc

import (
	"fmt"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
)

// Workbook groups the tables one evaluation run can reach and resolves
// qualified references between them.
type Workbook struct {
	tables []*Table
	byID   map[string]*Table
	byName map[string]*Table
}

// NewWorkbook creates a workbook holding tables.
func NewWorkbook(tables ...*Table) (*Workbook, error) {
	w := &Workbook{
		byID:   make(map[string]*Table),
		byName: make(map[string]*Table),
	}
	for _, t := range tables {
		if err := w.Add(t); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Add registers t. A table belongs to at most one workbook and ids are
// unique within it.
func (w *Workbook) Add(t *Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", domain.ErrInvalidInput)
	}
	if _, dup := w.byID[t.id]; dup {
		return fmt.Errorf("%w: table %s added twice", domain.ErrInvalidInput, t.id)
	}
	if t.workbook != nil && t.workbook != w {
		return fmt.Errorf("%w: table %s belongs to another workbook", domain.ErrInvalidInput, t.id)
	}
	t.workbook = w
	w.tables = append(w.tables, t)
	w.byID[t.id] = t
	if t.name != "" {
		if _, taken := w.byName[t.name]; !taken {
			w.byName[t.name] = t
		}
	}
	return nil
}

// Table returns the table with the given id.
func (w *Workbook) Table(id string) (*Table, bool) {
	t, ok := w.byID[id]
	return t, ok
}

// Tables returns the tables in the order they were added.
func (w *Workbook) Tables() []*Table {
	return append([]*Table(nil), w.tables...)
}

// Resolve maps a qualified reference such as "table_2!A1" or
// "'Info'!$B$3" to its table and address. The qualifier is matched against
// table ids first, then table names.
func (w *Workbook) Resolve(ref string) (*Table, domain.Address, error) {
	qualifier, cell := formula.SplitExternal(formula.ExternalKey(ref))
	if qualifier == "" {
		return nil, domain.Address{}, fmt.Errorf("%w: %q has no table qualifier", domain.ErrInvalidAddress, ref)
	}
	addr, err := domain.ParseAddress(cell)
	if err != nil {
		return nil, domain.Address{}, err
	}
	if t, ok := w.byID[qualifier]; ok {
		return t, addr, nil
	}
	if t, ok := w.byName[qualifier]; ok {
		return t, addr, nil
	}
	return nil, domain.Address{}, fmt.Errorf("%w: table %q", domain.ErrNotFound, qualifier)
}

// Reset returns every formula cell of every table to Pending.
func (w *Workbook) Reset() {
	for _, t := range w.tables {
		t.Reset()
	}
}
