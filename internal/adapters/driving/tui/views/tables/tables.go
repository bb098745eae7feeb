// Package tables provides the table picker view for the TUI.
package tables

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// View lists the available tables and opens one for evaluation.
type View struct {
	styles       *styles.Styles
	tableService driving.TableService
	ctx          context.Context

	tables   []domain.TableSummary
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new tables view.
func NewView(s *styles.Styles, tableService driving.TableService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		tableService: tableService,
		ctx:          context.Background(),
		tables:       []domain.TableSummary{},
	}
}

// SetContext sets the context used for loading tables.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init initialises the view and loads tables.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadTables()
}

// loadTables returns a command that lists tables from the service.
func (v *View) loadTables() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.tableService == nil {
			return messages.TablesLoaded{Err: fmt.Errorf("table service not available")}
		}
		tables, err := v.tableService.List(ctx)
		return messages.TablesLoaded{Tables: tables, Err: err}
	}
}

// Update handles messages for the tables view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TablesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.tables = msg.Tables
		v.err = nil
		if v.selected >= len(v.tables) {
			v.selected = max(len(v.tables)-1, 0)
		}
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.tables)-1 {
			v.selected++
		}
	case "enter":
		if len(v.tables) > 0 && v.selected < len(v.tables) {
			id := v.tables[v.selected].ID
			return v, func() tea.Msg {
				return messages.TableSelected{ID: id}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadTables()
	}

	return v, nil
}

// View renders the tables view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Tables"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading tables..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.tables) == 0:
		b.WriteString(v.styles.Muted.Render("No tables available."))
	default:
		for _, i := range v.visibleRange() {
			b.WriteString(v.renderTable(i, &v.tables[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// visibleRange returns the indexes of the rows that fit on screen.
func (v *View) visibleRange() []int {
	visible := len(v.tables)
	if v.height > 6 {
		visible = min(visible, v.height-6)
	}
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	out := make([]int, 0, visible)
	for i := start; i < start+visible && i < len(v.tables); i++ {
		out = append(out, i)
	}
	return out
}

// renderTable renders a single table line.
func (v *View) renderTable(index int, table *domain.TableSummary) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := table.Name
	if name == "" {
		name = "(Untitled)"
	}
	idStr := fmt.Sprintf("[%s]", table.ID)

	maxNameLen := v.width - len(idStr) - 6
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%s %s", indicator, name, idStr))
	}
	return v.styles.Normal.Render(indicator+name+" ") + v.styles.Muted.Render(idStr)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[enter] evaluate  [r] reload  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Tables returns the current list of tables.
func (v *View) Tables() []domain.TableSummary {
	return v.tables
}

// SelectedIndex returns the currently selected table index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
