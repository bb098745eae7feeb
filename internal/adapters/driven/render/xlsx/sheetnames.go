package xlsx

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// invalidSheetChars are rejected by Excel in sheet names.
const invalidSheetChars = ":\\/?*[]"

// SanitizeSheetName removes characters Excel rejects and truncates to the
// maximum sheet name length. Leading and trailing quotes are dropped.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return -1
		}
		return r
	}, name)
	name = truncate(strings.Trim(strings.TrimSpace(name), "'"), excelize.MaxSheetNameLength)
	return strings.TrimRight(name, "'")
}

// sheetNamer hands out unique sheet names. Excel compares names
// case-insensitively.
type sheetNamer struct {
	taken map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{taken: make(map[string]bool)}
}

// next returns a unique name for a table. Collisions get a numeric suffix
// on a shortened base: "Budget", "Budget_1", "Budget_2".
func (n *sheetNamer) next(name, fallback string) string {
	base := SanitizeSheetName(name)
	if base == "" {
		base = SanitizeSheetName(fallback)
	}
	if base == "" {
		base = "Sheet"
	}

	candidate := base
	for i := 1; n.taken[strings.ToLower(candidate)]; i++ {
		suffix := "_" + strconv.Itoa(i)
		candidate = truncate(base, excelize.MaxSheetNameLength-len(suffix)) + suffix
	}
	n.taken[strings.ToLower(candidate)] = true
	return candidate
}

// quoteSheet returns the sheet name quoted for use in a formula.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
