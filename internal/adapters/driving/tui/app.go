package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/views/sheet"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/views/tables"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// tablesView lists the tables that can be opened.
	tablesView *tables.View

	// sheetView shows the evaluated tables.
	sheetView *sheet.View

	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when the help view closes.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// Evaluations run with opts.
func NewApp(ports *Ports, opts domain.EvaluationSettings) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		tablesView:  tables.NewView(s, ports.Tables),
		sheetView:   sheet.NewView(s, ports.Workbook, opts),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewTables,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.tablesView.SetContext(ctx)
	a.sheetView.SetContext(ctx)
	return a
}

// WithRoot opens the given table directly instead of the table list.
func (a *App) WithRoot(id string) *App {
	if id == "" {
		return a
	}
	a.sheetView.SetRoot(id)
	a.currentView = messages.ViewSheet
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("sheetlink"),
		a.initView(a.currentView),
	)
}

// initView starts the loading work of a view and reflects it in the status bar.
func (a *App) initView(view messages.ViewType) tea.Cmd {
	switch view {
	case messages.ViewTables:
		a.statusBar.Clear()
		a.statusBar.SetState(status.StateLoading)
		a.statusBar.SetMessage("Loading tables...")
		return a.tablesView.Init()
	case messages.ViewSheet:
		a.statusBar.Clear()
		a.statusBar.SetState(status.StateLoading)
		a.statusBar.SetMessage("Evaluating " + a.sheetView.RootID() + "...")
		return a.sheetView.Init()
	case messages.ViewHelp:
	}
	return nil
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.TablesLoaded:
		a.tablesView, cmd = a.tablesView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else if a.currentView == messages.ViewTables {
			a.statusBar.Clear()
		}
		return a, cmd

	case messages.TableSelected:
		a.sheetView.SetRoot(msg.ID)
		a.currentView = messages.ViewSheet
		return a, a.initView(messages.ViewSheet)

	case messages.EvaluationCompleted:
		a.sheetView, cmd = a.sheetView.Update(msg)
		if msg.RootID != a.sheetView.RootID() {
			return a, cmd
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, cmd
		}
		a.err = nil
		a.statusBar.Clear()
		a.statusBar.SetState(status.StateEvaluated)
		if msg.Report != nil {
			a.statusBar.SetCounts(msg.Report.FormulaCount, msg.Report.ErrorCount)
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewTables && len(a.tablesView.Tables()) == 0 {
			return a, a.initView(msg.View)
		}
		a.statusBar.Clear()
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		a.sheetView, cmd = a.sheetView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
	case messages.ViewSheet:
		a.sheetView, cmd = a.sheetView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return a, cmd
}

// handleKeyMsg routes key presses to global bindings or the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	keyStr := msg.String()

	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(keyStr, a.keymap.Help) || keymap.Matches(keyStr, a.keymap.Back) {
			a.currentView = a.previousView
			a.statusBar.SetState(a.previousState())
		}
		return a, nil
	}
	if keymap.Matches(keyStr, a.keymap.Help) {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		a.statusBar.SetState(status.StateHelp)
		return a, nil
	}

	switch a.currentView {
	case messages.ViewTables:
		a.tablesView, cmd = a.tablesView.Update(msg)
		if keymap.Matches(keyStr, a.keymap.Reload) {
			a.statusBar.SetState(status.StateLoading)
			a.statusBar.SetMessage("Loading tables...")
		}
	case messages.ViewSheet:
		wasLoading := a.sheetView.Loading()
		a.sheetView, cmd = a.sheetView.Update(msg)
		if !wasLoading && a.sheetView.Loading() {
			a.statusBar.SetState(status.StateLoading)
			a.statusBar.SetMessage("Evaluating " + a.sheetView.RootID() + "...")
		}
	case messages.ViewHelp:
	}
	return a, cmd
}

// previousState picks the status to show after leaving the help view.
func (a *App) previousState() status.State {
	switch {
	case a.err != nil:
		return status.StateError
	case a.previousView == messages.ViewSheet && a.sheetView.Report() != nil:
		return status.StateEvaluated
	default:
		return status.StateReady
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.Clear()
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewSheet:
		body = a.sheetView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	case messages.ViewTables:
		body = a.tablesView.View()
	default:
		body = a.tablesView.View()
	}
	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Tables:
  j/k, ↑/↓    Navigate tables
  enter       Evaluate table
  r           Reload list

Sheet:
  h/j/k/l     Move between cells
  tab         Next linked table
  shift+tab   Previous linked table
  enter       Follow link
  r           Evaluate again
  esc         Back to tables

  ?           Toggle help
  q, ctrl+c   Quit

[esc] close help`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Sheet returns the sheet view.
func (a *App) Sheet() *sheet.View {
	return a.sheetView
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// leave the last line for the status bar
	a.tablesView.SetDimensions(width, height-1)
	a.sheetView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
