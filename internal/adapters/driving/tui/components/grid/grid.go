// Package grid provides the spreadsheet grid component for the TUI.
package grid

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

const (
	// DefaultColumnWidth is the display width of one column.
	DefaultColumnWidth = 12

	// errorMarker is shown in place of a failed formula's value.
	errorMarker = "#ERROR!"

	rowHeaderWidth = 5
)

// Grid displays an evaluated table as rows and columns with a cursor.
type Grid struct {
	styles *styles.Styles

	cells   map[domain.Address]*domain.RenderedCell
	maxRow  int
	maxCol  int
	row     int
	col     int
	rowOff  int
	colOff  int
	colW    int
	width   int
	height  int
	tableID string
}

// New creates a new grid component.
func New(s *styles.Styles) *Grid {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Grid{
		styles: s,
		cells:  make(map[domain.Address]*domain.RenderedCell),
		maxRow: 1,
		maxCol: 1,
		row:    1,
		col:    1,
		colW:   DefaultColumnWidth,
		width:  80,
		height: 20,
	}
}

// SetTable replaces the displayed table and resets the cursor to A1.
func (g *Grid) SetTable(table *domain.RenderedTable) {
	g.cells = make(map[domain.Address]*domain.RenderedCell)
	g.maxRow, g.maxCol = 1, 1
	g.row, g.col = 1, 1
	g.rowOff, g.colOff = 0, 0
	g.tableID = ""
	if table == nil {
		return
	}

	g.tableID = table.ID
	for i := range table.Cells {
		c := &table.Cells[i]
		g.cells[domain.Address{Row: c.Row, Column: c.Column}] = c
		g.maxRow = max(g.maxRow, c.Row)
		g.maxCol = max(g.maxCol, c.Column)
	}
}

// TableID returns the id of the displayed table.
func (g *Grid) TableID() string {
	return g.tableID
}

// Init initialises the grid.
func (g *Grid) Init() tea.Cmd {
	return nil
}

// Update handles cursor movement.
func (g *Grid) Update(msg tea.Msg) (*Grid, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			g.Move(-1, 0)
		case "down", "j":
			g.Move(1, 0)
		case "left", "h":
			g.Move(0, -1)
		case "right", "l":
			g.Move(0, 1)
		}
	}
	return g, nil
}

// Move shifts the cursor, clamped to the used range of the table.
func (g *Grid) Move(rowDelta, colDelta int) {
	g.row = clamp(g.row+rowDelta, 1, g.maxRow)
	g.col = clamp(g.col+colDelta, 1, g.maxCol)
	g.scroll()
}

// MoveTo places the cursor on addr if it lies within the table.
func (g *Grid) MoveTo(addr domain.Address) bool {
	if addr.Row < 1 || addr.Row > g.maxRow || addr.Column < 1 || addr.Column > g.maxCol {
		return false
	}
	g.row, g.col = addr.Row, addr.Column
	g.scroll()
	return true
}

// Cursor returns the address under the cursor.
func (g *Grid) Cursor() domain.Address {
	return domain.Address{Row: g.row, Column: g.col}
}

// Selected returns the cell under the cursor, or nil when it is empty.
func (g *Grid) Selected() *domain.RenderedCell {
	return g.cells[g.Cursor()]
}

// Bounds returns the last used row and column.
func (g *Grid) Bounds() (rows, cols int) {
	return g.maxRow, g.maxCol
}

// SetSize sets the area available to the grid.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.scroll()
}

func (g *Grid) visibleRows() int {
	// one line for the column header
	return max(g.height-1, 1)
}

func (g *Grid) visibleCols() int {
	return max((g.width-rowHeaderWidth)/(g.colW+1), 1)
}

// scroll keeps the cursor inside the visible window.
func (g *Grid) scroll() {
	rows, cols := g.visibleRows(), g.visibleCols()
	if g.row-1 < g.rowOff {
		g.rowOff = g.row - 1
	}
	if g.row-1 >= g.rowOff+rows {
		g.rowOff = g.row - rows
	}
	if g.col-1 < g.colOff {
		g.colOff = g.col - 1
	}
	if g.col-1 >= g.colOff+cols {
		g.colOff = g.col - cols
	}
}

// View renders the visible part of the grid.
func (g *Grid) View() string {
	lastRow := min(g.rowOff+g.visibleRows(), g.maxRow)
	lastCol := min(g.colOff+g.visibleCols(), g.maxCol)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowHeaderWidth))
	for col := g.colOff + 1; col <= lastCol; col++ {
		b.WriteString(g.styles.Header.Render(pad(domain.ColumnName(col), g.colW)))
		b.WriteString(" ")
	}

	for row := g.rowOff + 1; row <= lastRow; row++ {
		b.WriteString("\n")
		b.WriteString(g.styles.Header.Render(fmt.Sprintf("%*d ", rowHeaderWidth-1, row)))
		for col := g.colOff + 1; col <= lastCol; col++ {
			b.WriteString(g.renderCell(row, col))
			b.WriteString(" ")
		}
	}
	return b.String()
}

func (g *Grid) renderCell(row, col int) string {
	cell := g.cells[domain.Address{Row: row, Column: col}]
	text := pad(CellText(cell), g.colW)

	if row == g.row && col == g.col {
		return g.styles.Selected.Render(text)
	}
	if cell == nil {
		return g.styles.Normal.Render(text)
	}
	switch {
	case cell.Error != "":
		return g.styles.Error.Render(text)
	case cell.Kind == domain.CellKindReference:
		return g.styles.Link.Render(text)
	case cell.Kind == domain.CellKindFormula:
		return g.styles.Formula.Render(text)
	default:
		return g.styles.Normal.Render(text)
	}
}

// CellText is the text shown for a cell inside the grid.
func CellText(cell *domain.RenderedCell) string {
	switch {
	case cell == nil:
		return ""
	case cell.Error != "":
		return errorMarker
	case cell.Kind == domain.CellKindReference && cell.Target != "":
		return "→ " + cell.Target
	default:
		return cell.Display
	}
}

// pad fits text into exactly width display cells.
func pad(text string, width int) string {
	if lipgloss.Width(text) > width {
		runes := []rune(text)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		text = string(runes) + "…"
	}
	return text + strings.Repeat(" ", max(width-lipgloss.Width(text), 0))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
