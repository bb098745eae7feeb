package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Spreadsheet bounds for a single table.
const (
	// MaxRows is the highest valid row number.
	MaxRows = 1_048_576

	// MaxColumns is the highest valid column number (XFD).
	MaxColumns = 16_384
)

// Address is a 1-based cell coordinate.
// Addresses order row-major: by row, then by column.
type Address struct {
	Row    int
	Column int
}

// NewAddress returns the address at row, column or ErrInvalidAddress when
// either coordinate is out of bounds.
func NewAddress(row, column int) (Address, error) {
	a := Address{Row: row, Column: column}
	if !a.Valid() {
		return Address{}, fmt.Errorf("%w: row %d column %d out of bounds", ErrInvalidAddress, row, column)
	}
	return a, nil
}

// MustAddress is like NewAddress but panics on invalid coordinates.
// Intended for tests and literals.
func MustAddress(row, column int) Address {
	a, err := NewAddress(row, column)
	if err != nil {
		panic(err)
	}
	return a
}

// Valid reports whether the address lies within spreadsheet bounds.
func (a Address) Valid() bool {
	return a.Row >= 1 && a.Row <= MaxRows && a.Column >= 1 && a.Column <= MaxColumns
}

// String returns the canonical text form, e.g. "B12".
func (a Address) String() string {
	return ColumnName(a.Column) + strconv.Itoa(a.Row)
}

// Less reports whether a sorts before b in row-major order.
func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// Compare returns -1, 0 or 1 comparing a and b in row-major order.
func (a Address) Compare(b Address) int {
	switch {
	case a.Row < b.Row:
		return -1
	case a.Row > b.Row:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	default:
		return 0
	}
}

// Offset returns the address moved by rowDelta rows and colDelta columns.
// The result is re-validated against spreadsheet bounds.
func (a Address) Offset(rowDelta, colDelta int) (Address, error) {
	return NewAddress(a.Row+rowDelta, a.Column+colDelta)
}

// ParseAddress parses canonical address text such as "A1" or "XFD1048576".
// An optional sheet qualifier ("Sheet1!A1", "'My Sheet'!A1") and absolute
// markers ("$A$1") are ignored. Lowercase column letters are accepted.
func ParseAddress(text string) (Address, error) {
	s := strings.TrimSpace(text)
	if i := strings.LastIndexByte(s, '!'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ToUpper(s)

	letters := 0
	for letters < len(s) && s[letters] >= 'A' && s[letters] <= 'Z' {
		letters++
	}
	if letters == 0 || letters == len(s) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
	}
	for i := letters; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
		}
	}

	col, ok := columnNumber(s[:letters])
	if !ok {
		return Address{}, fmt.Errorf("%w: %q column out of bounds", ErrInvalidAddress, text)
	}
	row, err := strconv.Atoi(s[letters:])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
	}

	a := Address{Row: row, Column: col}
	if !a.Valid() {
		return Address{}, fmt.Errorf("%w: %q out of bounds", ErrInvalidAddress, text)
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(text string) Address {
	a, err := ParseAddress(text)
	if err != nil {
		panic(err)
	}
	return a
}

// ColumnName converts a 1-based column number to its letters (1 -> A, 27 -> AA).
// Non-positive numbers yield an empty string.
func ColumnName(col int) string {
	var buf [8]byte
	i := len(buf)
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// ColumnNumber converts column letters to a 1-based column number.
func ColumnNumber(name string) (int, error) {
	n, ok := columnNumber(strings.ToUpper(name))
	if !ok {
		return 0, fmt.Errorf("%w: column %q", ErrInvalidAddress, name)
	}
	return n, nil
}

func columnNumber(letters string) (int, bool) {
	if letters == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		n = n*26 + int(c-'A'+1)
		if n > MaxColumns {
			return 0, false
		}
	}
	return n, true
}
