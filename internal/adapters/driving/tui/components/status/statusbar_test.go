package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := NewBar(s, km)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.FormulaCount())
	assert.Equal(t, 0, bar.ErrorCount())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Init(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
}

func TestStatusBar_Update(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateLoading)
	bar.SetMessage("fetching")
	bar.SetCounts(7, 2)
	bar.SetWidth(120)

	assert.Equal(t, StateLoading, bar.State())
	assert.Equal(t, "fetching", bar.Message())
	assert.Equal(t, 7, bar.FormulaCount())
	assert.Equal(t, 2, bar.ErrorCount())
	assert.Equal(t, 120, bar.Width())
}

func TestStatusBar_Width(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, 80, bar.Width()) // Default
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("error message")
	bar.SetCounts(10, 3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.FormulaCount())
	assert.Equal(t, 0, bar.ErrorCount())
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		expected []string
	}{
		{"ready", StateReady, "", []string{"Ready", "quit"}},
		{"loading default", StateLoading, "", []string{"Loading..."}},
		{"loading message", StateLoading, "Evaluating", []string{"Evaluating"}},
		{"error", StateError, "", []string{"Error"}},
		{"error message", StateError, "offline", []string{"Error: offline"}},
		{"help", StateHelp, "", []string{"Help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			view := bar.View()

			for _, want := range tt.expected {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_View_Evaluated(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateEvaluated)
	bar.SetCounts(5, 1)

	view := bar.View()

	assert.Contains(t, view, "5 formulas, 1 errors")
	assert.Contains(t, view, "next table")
}

func TestState_Constants(t *testing.T) {
	assert.Equal(t, State("ready"), StateReady)
	assert.Equal(t, State("loading"), StateLoading)
	assert.Equal(t, State("error"), StateError)
	assert.Equal(t, State("help"), StateHelp)
	assert.Equal(t, State("evaluated"), StateEvaluated)
}
