package calc

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/formula"
)

// ReferenceErrorText is the display value of a link cell without targets.
const ReferenceErrorText = "Reference Error"

// Cell is one cell of a Table. The implementations are *ValueCell,
// *FormulaCell and *ReferenceCell; no other type can satisfy it.
type Cell interface {
	// Address returns the cell coordinate.
	Address() domain.Address

	// Kind returns the cell variant.
	Kind() domain.CellKind

	// Format returns the display hint.
	Format() domain.FormatType

	cell()
}

// Compile-time interface checks.
var (
	_ Cell = (*ValueCell)(nil)
	_ Cell = (*FormulaCell)(nil)
	_ Cell = (*ReferenceCell)(nil)
)

// ValueCell holds a literal scalar.
type ValueCell struct {
	addr   domain.Address
	raw    any
	value  formula.Value
	format domain.FormatType
}

func newValueCell(addr domain.Address, raw any, format domain.FormatType) *ValueCell {
	value := formula.FromAny(raw)
	if format.RequiresExactDecimal() {
		value = exact(value)
	}
	return &ValueCell{addr: addr, raw: raw, value: value, format: format}
}

func (c *ValueCell) Address() domain.Address   { return c.addr }
func (c *ValueCell) Kind() domain.CellKind     { return domain.CellKindValue }
func (c *ValueCell) Format() domain.FormatType { return c.format }
func (c *ValueCell) cell()                     {}

// Raw returns the scalar as it was supplied.
func (c *ValueCell) Raw() any { return c.raw }

// Value returns the scalar as a formula value.
func (c *ValueCell) Value() formula.Value { return c.value }

// ReferenceCell points at cells of other tables. Its value is a display
// string naming the first target; following the link is up to the caller.
type ReferenceCell struct {
	addr   domain.Address
	refs   []domain.CellReference
	format domain.FormatType
}

func newReferenceCell(addr domain.Address, refs []domain.CellReference, format domain.FormatType) *ReferenceCell {
	return &ReferenceCell{
		addr:   addr,
		refs:   append([]domain.CellReference(nil), refs...),
		format: format,
	}
}

func (c *ReferenceCell) Address() domain.Address   { return c.addr }
func (c *ReferenceCell) Kind() domain.CellKind     { return domain.CellKindReference }
func (c *ReferenceCell) Format() domain.FormatType { return c.format }
func (c *ReferenceCell) cell()                     {}

// References returns a copy of the targets in input order.
func (c *ReferenceCell) References() []domain.CellReference {
	return append([]domain.CellReference(nil), c.refs...)
}

// Target returns the first target, if any.
func (c *ReferenceCell) Target() (domain.CellReference, bool) {
	if len(c.refs) == 0 {
		return domain.CellReference{}, false
	}
	return c.refs[0], true
}

// Display returns "LINK:table_id!address" for the first target, or
// ReferenceErrorText when there is none.
func (c *ReferenceCell) Display() string {
	ref, ok := c.Target()
	if !ok {
		return ReferenceErrorText
	}
	return "LINK:" + ref.Target()
}

// Value returns Display as a text value.
func (c *ReferenceCell) Value() formula.Value { return formula.Text(c.Display()) }

// exact converts numbers to decimals at the 15 significant digits a
// spreadsheet displays, so 0.1+0.2 becomes 0.3.
func exact(v formula.Value) formula.Value {
	if v.Kind() != formula.KindNumber {
		return v
	}
	f, _ := v.Float()
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', 15, 64))
	if err != nil {
		return v
	}
	return formula.Decimal(d)
}

// formulaText renders the raw formula field of a definition.
func formulaText(raw any) string {
	switch f := raw.(type) {
	case nil:
		return ""
	case string:
		return f
	default:
		return fmt.Sprint(f)
	}
}
