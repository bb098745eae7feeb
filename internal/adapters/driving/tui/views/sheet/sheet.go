// Package sheet provides the evaluated table view for the TUI.
package sheet

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/components/grid"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driving"
)

// reservedLines covers the title, tab line, separator, detail panel and help.
const reservedLines = 9

// View shows one evaluation report, a table at a time.
type View struct {
	styles   *styles.Styles
	workbook driving.WorkbookService
	opts     domain.EvaluationSettings
	ctx      context.Context

	grid    *grid.Grid
	rootID  string
	report  *domain.EvaluationReport
	current int
	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a new sheet view.
func NewView(s *styles.Styles, workbook driving.WorkbookService, opts domain.EvaluationSettings) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		workbook: workbook,
		opts:     opts,
		ctx:      context.Background(),
		grid:     grid.New(s),
	}
}

// SetContext sets the context used for evaluation.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetRoot selects the table to evaluate on the next Init.
func (v *View) SetRoot(id string) {
	if id != v.rootID {
		v.report = nil
		v.current = 0
		v.grid.SetTable(nil)
	}
	v.rootID = id
}

// Init starts the evaluation of the root table.
func (v *View) Init() tea.Cmd {
	if v.rootID == "" {
		return nil
	}
	v.loading = true
	v.err = nil
	return v.evaluate(v.rootID)
}

// evaluate returns a command that runs the workbook evaluation.
func (v *View) evaluate(rootID string) tea.Cmd {
	ctx, opts := v.ctx, v.opts
	return func() tea.Msg {
		if v.workbook == nil {
			return messages.EvaluationCompleted{RootID: rootID, Err: fmt.Errorf("workbook service not available")}
		}
		report, err := v.workbook.Evaluate(ctx, rootID, opts)
		return messages.EvaluationCompleted{RootID: rootID, Report: report, Err: err}
	}
}

// Update handles messages for the sheet view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.EvaluationCompleted:
		if msg.RootID != v.rootID {
			// stale result from a previous root
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.setReport(msg.Report)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// setReport installs a new report, staying on the same table when possible.
func (v *View) setReport(report *domain.EvaluationReport) {
	prevID := v.grid.TableID()
	cursor := v.grid.Cursor()

	v.report = report
	v.current = 0
	if report == nil || len(report.Tables) == 0 {
		v.grid.SetTable(nil)
		return
	}
	for i := range report.Tables {
		if report.Tables[i].ID == prevID {
			v.current = i
		}
	}
	v.grid.SetTable(&report.Tables[v.current])
	if report.Tables[v.current].ID == prevID {
		v.grid.MoveTo(cursor)
	}
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab":
		v.switchTable(1)
	case "shift+tab":
		v.switchTable(-1)
	case "enter":
		v.follow()
	case "r":
		if v.rootID != "" && !v.loading {
			return v, v.Init()
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewTables}
		}
	default:
		v.grid, _ = v.grid.Update(msg)
	}
	return v, nil
}

// switchTable moves to the next or previous table of the report.
func (v *View) switchTable(delta int) {
	if v.report == nil || len(v.report.Tables) < 2 {
		return
	}
	n := len(v.report.Tables)
	v.current = ((v.current+delta)%n + n) % n
	v.grid.SetTable(&v.report.Tables[v.current])
}

// follow jumps to the target of the selected reference cell.
func (v *View) follow() bool {
	cell := v.grid.Selected()
	if v.report == nil || cell == nil || cell.Kind != domain.CellKindReference || cell.Target == "" {
		return false
	}
	i := strings.LastIndex(cell.Target, "!")
	if i < 0 {
		return false
	}
	tableID, text := cell.Target[:i], cell.Target[i+1:]
	addr, err := domain.ParseAddress(text)
	if err != nil {
		return false
	}
	for idx := range v.report.Tables {
		if v.report.Tables[idx].ID == tableID {
			v.current = idx
			v.grid.SetTable(&v.report.Tables[idx])
			v.grid.MoveTo(addr)
			return true
		}
	}
	return false
}

// View renders the sheet view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Evaluating..."))
	case v.err != nil:
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.report == nil || len(v.report.Tables) == 0:
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Nothing evaluated yet"))
	default:
		b.WriteString(v.renderTabs())
		b.WriteString("\n")
		b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 10)))
		b.WriteString("\n")
		b.WriteString(v.grid.View())
		b.WriteString("\n\n")
		b.WriteString(v.renderDetail())
		if len(v.report.Skipped) > 0 {
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("Skipped: " + strings.Join(v.report.Skipped, ", ")))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) title() string {
	if v.rootID == "" {
		return "Sheet"
	}
	return "Sheet: " + v.rootID
}

// renderTabs renders one tab per evaluated table.
func (v *View) renderTabs() string {
	tabs := make([]string, 0, len(v.report.Tables))
	for i := range v.report.Tables {
		t := &v.report.Tables[i]
		name := t.Name
		if name == "" {
			name = t.ID
		}
		label := fmt.Sprintf(" %s ", name)
		if errs := len(t.Errors()); errs > 0 {
			label = fmt.Sprintf(" %s (%d!) ", name, errs)
		}
		if i == v.current {
			tabs = append(tabs, v.styles.Selected.Render(label))
		} else {
			tabs = append(tabs, v.styles.Muted.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

// renderDetail describes the cell under the cursor.
func (v *View) renderDetail() string {
	addr := v.grid.Cursor().String()
	cell := v.grid.Selected()
	if cell == nil {
		return v.styles.Muted.Render(addr + "  (empty)")
	}

	parts := []string{v.styles.Subtitle.Render(addr)}
	switch cell.Kind {
	case domain.CellKindFormula:
		parts = append(parts, v.styles.Formula.Render(cell.Formula))
	case domain.CellKindReference:
		if cell.Target != "" {
			parts = append(parts, v.styles.Link.Render("→ "+cell.Target))
		}
	case domain.CellKindValue:
	}
	if cell.Error != "" {
		parts = append(parts, v.styles.Error.Render(cell.Error))
	} else {
		parts = append(parts, v.styles.Normal.Render(cell.Display))
	}
	if cell.Format != domain.FormatNone {
		parts = append(parts, v.styles.Muted.Render("["+string(cell.Format)+"]"))
	}
	return strings.Join(parts, "  ")
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[tab] next table  [enter] follow link  [r] reload  [esc] back  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.grid.SetSize(width, max(height-reservedLines, 3))
}

// Report returns the last evaluation report.
func (v *View) Report() *domain.EvaluationReport {
	return v.report
}

// CurrentTable returns the table being displayed, or nil.
func (v *View) CurrentTable() *domain.RenderedTable {
	if v.report == nil || v.current >= len(v.report.Tables) {
		return nil
	}
	return &v.report.Tables[v.current]
}

// Grid returns the grid component.
func (v *View) Grid() *grid.Grid {
	return v.grid
}

// RootID returns the table being evaluated.
func (v *View) RootID() string {
	return v.rootID
}

// Loading reports whether an evaluation is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
