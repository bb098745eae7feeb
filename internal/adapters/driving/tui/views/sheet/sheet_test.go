package sheet

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// MockWorkbookService implements driving.WorkbookService for testing.
type MockWorkbookService struct {
	EvaluateFunc func(ctx context.Context, rootID string, opts domain.EvaluationSettings) (*domain.EvaluationReport, error)
}

func (m *MockWorkbookService) Evaluate(
	ctx context.Context, rootID string, opts domain.EvaluationSettings,
) (*domain.EvaluationReport, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, rootID, opts)
	}
	return &domain.EvaluationReport{RootID: rootID}, nil
}

func (m *MockWorkbookService) Export(
	ctx context.Context, rootID string, opts domain.EvaluationSettings, output domain.OutputSettings,
) (*domain.EvaluationReport, error) {
	return nil, domain.ErrNotImplemented
}

func testReport() *domain.EvaluationReport {
	return &domain.EvaluationReport{
		RootID: "budget",
		Tables: []domain.RenderedTable{
			{
				ID:   "budget",
				Name: "Budget",
				Cells: []domain.RenderedCell{
					{Address: "A1", Row: 1, Column: 1, Kind: domain.CellKindReference, Display: "LINK:info!B2", Target: "info!B2"},
					{Address: "B1", Row: 1, Column: 2, Kind: domain.CellKindFormula, Formula: "=1/0", Error: "division by zero"},
					{Address: "B2", Row: 2, Column: 2, Kind: domain.CellKindFormula, Formula: "=SUM(B3:B4)", Display: "1500", Format: domain.FormatCurrency},
				},
			},
			{
				ID:   "info",
				Name: "Info",
				Cells: []domain.RenderedCell{
					{Address: "B2", Row: 2, Column: 2, Kind: domain.CellKindValue, Display: "0.2"},
				},
			},
		},
		Skipped:      []string{"gone"},
		FormulaCount: 2,
		ErrorCount:   1,
	}
}

func loadedView(t *testing.T) *View {
	t.Helper()
	view := NewView(nil, &MockWorkbookService{}, domain.EvaluationSettings{})
	view.SetDimensions(100, 30)
	view.SetRoot("budget")
	view.Update(messages.EvaluationCompleted{RootID: "budget", Report: testReport()})
	require.NotNil(t, view.Report())
	return view
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil, domain.EvaluationSettings{})

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.Grid())
	assert.Nil(t, view.Report())
	assert.Nil(t, view.CurrentTable())
	assert.Nil(t, view.Init())
}

func TestView_Init_Evaluates(t *testing.T) {
	var gotRoot string
	var gotOpts domain.EvaluationSettings
	mock := &MockWorkbookService{
		EvaluateFunc: func(ctx context.Context, rootID string, opts domain.EvaluationSettings) (*domain.EvaluationReport, error) {
			gotRoot, gotOpts = rootID, opts
			return testReport(), nil
		},
	}
	opts := domain.EvaluationSettings{MaxDepth: 10, StrictReferences: true}
	view := NewView(nil, mock, opts)
	view.SetRoot("budget")

	cmd := view.Init()

	require.NotNil(t, cmd)
	assert.True(t, view.Loading())
	done, ok := cmd().(messages.EvaluationCompleted)
	require.True(t, ok)
	assert.Equal(t, "budget", gotRoot)
	assert.Equal(t, opts, gotOpts)
	assert.Equal(t, "budget", done.RootID)
	assert.NoError(t, done.Err)
}

func TestView_Init_NilService(t *testing.T) {
	view := NewView(nil, nil, domain.EvaluationSettings{})
	view.SetRoot("budget")

	done, ok := view.Init()().(messages.EvaluationCompleted)

	require.True(t, ok)
	assert.Error(t, done.Err)
}

func TestView_Update_EvaluationCompleted(t *testing.T) {
	view := loadedView(t)

	assert.False(t, view.Loading())
	assert.NoError(t, view.Err())
	require.NotNil(t, view.CurrentTable())
	assert.Equal(t, "budget", view.CurrentTable().ID)
	assert.Equal(t, "budget", view.Grid().TableID())
}

func TestView_Update_EvaluationCompleted_Error(t *testing.T) {
	view := NewView(nil, nil, domain.EvaluationSettings{})
	view.SetRoot("budget")
	view.loading = true

	view.Update(messages.EvaluationCompleted{RootID: "budget", Err: domain.ErrNotFound})

	assert.False(t, view.Loading())
	assert.ErrorIs(t, view.Err(), domain.ErrNotFound)
	assert.Contains(t, view.View(), "Error: not found")
}

func TestView_Update_EvaluationCompleted_Stale(t *testing.T) {
	view := NewView(nil, nil, domain.EvaluationSettings{})
	view.SetRoot("info")

	view.Update(messages.EvaluationCompleted{RootID: "budget", Report: testReport()})

	assert.Nil(t, view.Report())
}

func TestView_Update_Reload_KeepsTableAndCursor(t *testing.T) {
	view := loadedView(t)
	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	view.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "info", view.CurrentTable().ID)

	view.Update(messages.EvaluationCompleted{RootID: "budget", Report: testReport()})

	assert.Equal(t, "info", view.CurrentTable().ID)
	assert.Equal(t, "B2", view.Grid().Cursor().String())
}

func TestView_Update_TabSwitchesTables(t *testing.T) {
	view := loadedView(t)

	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "info", view.CurrentTable().ID)

	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "budget", view.CurrentTable().ID)

	view.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "info", view.CurrentTable().ID)
}

func TestView_Update_EnterFollowsLink(t *testing.T) {
	view := loadedView(t)

	view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "info", view.CurrentTable().ID)
	assert.Equal(t, "B2", view.Grid().Cursor().String())
	require.NotNil(t, view.Grid().Selected())
	assert.Equal(t, "0.2", view.Grid().Selected().Display)
}

func TestView_Update_EnterOnValueDoesNothing(t *testing.T) {
	view := loadedView(t)
	view.Update(tea.KeyMsg{Type: tea.KeyRight})

	assert.False(t, view.follow())
	assert.Equal(t, "budget", view.CurrentTable().ID)
}

func TestView_Update_ReloadKey(t *testing.T) {
	view := loadedView(t)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	require.NotNil(t, cmd)
	assert.True(t, view.Loading())
	_, ok := cmd().(messages.EvaluationCompleted)
	assert.True(t, ok)
}

func TestView_Update_Esc(t *testing.T) {
	view := loadedView(t)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewTables, changed.View)
}

func TestView_Update_ErrorOccurred(t *testing.T) {
	view := loadedView(t)

	view.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, view.Err(), "boom")
}

func TestView_SetRoot_ResetsReport(t *testing.T) {
	view := loadedView(t)

	view.SetRoot("budget")
	assert.NotNil(t, view.Report())

	view.SetRoot("info")
	assert.Nil(t, view.Report())
	assert.Equal(t, "info", view.RootID())
}

func TestView_View(t *testing.T) {
	view := loadedView(t)

	out := view.View()

	assert.Contains(t, out, "Sheet: budget")
	assert.Contains(t, out, "Budget (1!)")
	assert.Contains(t, out, "Info")
	assert.Contains(t, out, "#ERROR!")
	assert.Contains(t, out, "Skipped: gone")
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "→ info!B2")
}

func TestView_View_Detail(t *testing.T) {
	view := loadedView(t)
	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	view.Update(tea.KeyMsg{Type: tea.KeyRight})

	detail := view.renderDetail()

	assert.Contains(t, detail, "B2")
	assert.Contains(t, detail, "=SUM(B3:B4)")
	assert.Contains(t, detail, "1500")
	assert.Contains(t, detail, "[currency]")
}

func TestView_View_DetailError(t *testing.T) {
	view := loadedView(t)
	view.Update(tea.KeyMsg{Type: tea.KeyRight})

	detail := view.renderDetail()

	assert.Contains(t, detail, "=1/0")
	assert.Contains(t, detail, "division by zero")
}

func TestView_View_States(t *testing.T) {
	view := NewView(nil, nil, domain.EvaluationSettings{})
	assert.Contains(t, view.View(), "Nothing evaluated yet")

	view.loading = true
	assert.Contains(t, view.View(), "Evaluating...")
}
