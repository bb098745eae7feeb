package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewTables, "tables"},
		{ViewSheet, "sheet"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestTablesLoaded(t *testing.T) {
	t.Run("with tables", func(t *testing.T) {
		msg := TablesLoaded{Tables: []domain.TableSummary{{ID: "t1", Name: "Budget"}}}

		assert.Len(t, msg.Tables, 1)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := TablesLoaded{Err: errors.New("offline")}

		assert.Empty(t, msg.Tables)
		assert.EqualError(t, msg.Err, "offline")
	})
}

func TestEvaluationCompleted(t *testing.T) {
	report := &domain.EvaluationReport{RootID: "t1", FormulaCount: 2}
	msg := EvaluationCompleted{RootID: "t1", Report: report}

	assert.Equal(t, "t1", msg.RootID)
	assert.Equal(t, 2, msg.Report.FormulaCount)
}
