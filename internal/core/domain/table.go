package domain

import (
	"fmt"
	"time"
)

// CellType identifies how the upstream service classifies a cell.
type CellType string

// Cell types delivered by the table service.
const (
	CellTypeValue   CellType = "value"
	CellTypeFormula CellType = "formula"
	CellTypeLink    CellType = "link"
	CellTypeEmpty   CellType = "empty"
)

// FormatType is the display hint attached to a cell.
type FormatType string

// Format hints.
const (
	FormatNone       FormatType = ""
	FormatNumber     FormatType = "number"
	FormatCurrency   FormatType = "currency"
	FormatPercentage FormatType = "percentage"
	FormatDate       FormatType = "date"
	FormatText       FormatType = "text"
)

// IsValid returns true if the format hint is recognised. The empty hint is valid.
func (f FormatType) IsValid() bool {
	switch f {
	case FormatNone, FormatNumber, FormatCurrency, FormatPercentage, FormatDate, FormatText:
		return true
	default:
		return false
	}
}

// RequiresExactDecimal reports whether numeric results with this hint are
// kept as exact decimals rather than binary floating point.
func (f FormatType) RequiresExactDecimal() bool {
	return f == FormatPercentage || f == FormatCurrency
}

// CellReference identifies a cell of another table.
type CellReference struct {
	// TableID is the id of the target table.
	TableID string `json:"table_id"`

	// CellAddress is the address text inside the target table.
	CellAddress string `json:"cell_address"`

	// SheetName optionally names the sheet the target table renders to.
	SheetName string `json:"sheet_name,omitempty"`
}

// String returns 'sheet'!A1 when a sheet name is set, otherwise table_id!A1.
func (r CellReference) String() string {
	if r.SheetName != "" {
		return fmt.Sprintf("'%s'!%s", r.SheetName, r.CellAddress)
	}
	return r.Target()
}

// Target returns the fully-qualified table_id!address form.
func (r CellReference) Target() string {
	return r.TableID + "!" + r.CellAddress
}

// CellDefinition is one cell as delivered by the table service.
type CellDefinition struct {
	// ID is the upstream cell identifier.
	ID string

	// Row and Column are 1-based coordinates.
	Row    int
	Column int

	// Type classifies the cell.
	Type CellType

	// Value is the raw scalar for value cells (float64, string, bool or nil).
	Value any

	// Formula is the formula text for formula cells, with or without "=".
	Formula any

	// Format is the optional display hint.
	Format FormatType

	// References lists the targets of link cells.
	References []CellReference

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// Address returns the cell coordinate as an Address. The result may be invalid.
func (c CellDefinition) Address() Address {
	return Address{Row: c.Row, Column: c.Column}
}

// TableDefinition is the immutable input a table is built from.
type TableDefinition struct {
	// ID is the unique identifier for the table.
	ID string

	// Name is the human-readable name.
	Name string

	// Description is optional free text.
	Description string

	// Cells lists the table's cells in upstream order.
	Cells []CellDefinition

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the table was created upstream.
	CreatedAt time.Time

	// UpdatedAt is when the table was last updated upstream.
	UpdatedAt time.Time
}

// FormulaCells returns the formula cell definitions in upstream order.
func (t *TableDefinition) FormulaCells() []CellDefinition {
	return t.cellsOfType(CellTypeFormula)
}

// LinkCells returns the link cell definitions in upstream order.
func (t *TableDefinition) LinkCells() []CellDefinition {
	return t.cellsOfType(CellTypeLink)
}

func (t *TableDefinition) cellsOfType(ct CellType) []CellDefinition {
	var out []CellDefinition
	for i := range t.Cells {
		if t.Cells[i].Type == ct {
			out = append(out, t.Cells[i])
		}
	}
	return out
}

// TableSummary is the listing entry for a table.
type TableSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
