package xlsx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Budget", "Budget"},
		{"invalid chars", "Q1: costs/[draft]?*\\", "Q1 costsdraft"},
		{"quotes trimmed", "'Info'", "Info"},
		{"truncated", strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{"empty", "", ""},
		{"only invalid", "[]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSheetName(tt.input))
		})
	}
}

func TestSheetNamer_Deduplicates(t *testing.T) {
	namer := newSheetNamer()

	assert.Equal(t, "Budget", namer.next("Budget", "t1"))
	assert.Equal(t, "budget_1", namer.next("budget", "t2"))
	assert.Equal(t, "Budget_2", namer.next("Budget", "t3"))
}

func TestSheetNamer_LongNamesKeepSuffix(t *testing.T) {
	namer := newSheetNamer()
	long := strings.Repeat("a", 40)

	first := namer.next(long, "t1")
	second := namer.next(long, "t2")

	assert.Len(t, first, 31)
	assert.Equal(t, strings.Repeat("a", 29)+"_1", second)
}

func TestSheetNamer_Fallbacks(t *testing.T) {
	namer := newSheetNamer()

	assert.Equal(t, "table_9", namer.next("[]", "table_9"))
	assert.Equal(t, "Sheet", namer.next("", ""))
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Info'", quoteSheet("Info"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}
