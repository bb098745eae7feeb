package domain

// CellKind identifies the variant of an evaluated cell.
type CellKind string

// Cell kinds.
const (
	CellKindValue     CellKind = "value"
	CellKindFormula   CellKind = "formula"
	CellKindReference CellKind = "reference"
)

// RenderedCell is the evaluated view of one cell handed to renderers.
type RenderedCell struct {
	// Address is the canonical address text.
	Address string `json:"address"`

	// Row and Column are the 1-based coordinates of Address.
	Row    int `json:"row"`
	Column int `json:"column"`

	// Kind is the cell variant.
	Kind CellKind `json:"kind"`

	// Value is the display value: float64, string, bool or nil.
	Value any `json:"value"`

	// Display is the canonical text of Value. Exact decimals keep all digits.
	Display string `json:"display"`

	// Format is the display hint of the cell.
	Format FormatType `json:"format,omitempty"`

	// Formula is "=<expression>" for formula cells.
	Formula string `json:"formula,omitempty"`

	// Target is "table_id!address" for reference cells.
	Target string `json:"target,omitempty"`

	// Error is the evaluation failure message, if any.
	Error string `json:"error,omitempty"`
}

// RenderedTable is the evaluated view of a table.
type RenderedTable struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Cells []RenderedCell `json:"cells"`
}

// Errors returns the cells that failed evaluation.
func (t RenderedTable) Errors() []RenderedCell {
	var out []RenderedCell
	for i := range t.Cells {
		if t.Cells[i].Error != "" {
			out = append(out, t.Cells[i])
		}
	}
	return out
}

// EvaluationReport summarises one evaluation run over a root table and
// every table reachable through its links.
type EvaluationReport struct {
	// RootID is the table the run started from.
	RootID string `json:"root_id"`

	// Tables holds the evaluated tables, root first.
	Tables []RenderedTable `json:"tables"`

	// Skipped lists linked table ids that could not be fetched.
	Skipped []string `json:"skipped,omitempty"`

	// FormulaCount is the number of formula cells evaluated.
	FormulaCount int `json:"formula_count"`

	// ErrorCount is the number of formula cells that failed.
	ErrorCount int `json:"error_count"`
}
