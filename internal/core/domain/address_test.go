package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress_Canonical(t *testing.T) {
	tests := []struct {
		text string
		want Address
	}{
		{"A1", Address{Row: 1, Column: 1}},
		{"Z1", Address{Row: 1, Column: 26}},
		{"AA1", Address{Row: 1, Column: 27}},
		{"AZ10", Address{Row: 10, Column: 52}},
		{"ZZ3", Address{Row: 3, Column: 702}},
		{"XFD1048576", Address{Row: MaxRows, Column: MaxColumns}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseAddress(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestParseAddress_StripsQualifierAndMarkers(t *testing.T) {
	for _, text := range []string{"$B$2", "B$2", "$B2", "Sheet1!B2", "'My Sheet'!$B$2", "b2"} {
		t.Run(text, func(t *testing.T) {
			got, err := ParseAddress(text)
			require.NoError(t, err)
			assert.Equal(t, Address{Row: 2, Column: 2}, got)
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, text := range []string{"", "A", "1", "A0", "A1048577", "XFE1", "1A", "A1B", "A-1", "AAAAAAAAAAAAAAAAAAAA1"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseAddress(text)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestNewAddress_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
	}{
		{"row zero", 0, 1},
		{"row too large", MaxRows + 1, 1},
		{"column zero", 1, 0},
		{"column too large", 1, MaxColumns + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAddress(tt.row, tt.col)
			assert.ErrorIs(t, err, ErrInvalidAddress)

			_, err = ParseAddress(Address{Row: tt.row, Column: tt.col}.String())
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	rows := []int{1, 2, 9, 10, 99, 1000, 65536, MaxRows - 1, MaxRows}
	for col := 1; col <= MaxColumns; col++ {
		for _, row := range rows {
			a := Address{Row: row, Column: col}
			got, err := ParseAddress(a.String())
			if err != nil || got != a {
				t.Fatalf("round trip failed for %+v: got %+v, err %v", a, got, err)
			}
		}
	}
}

func TestAddress_Compare(t *testing.T) {
	a1 := MustParseAddress("A1")
	b1 := MustParseAddress("B1")
	a2 := MustParseAddress("A2")

	assert.True(t, a1.Less(b1))
	assert.True(t, b1.Less(a2))
	assert.False(t, a2.Less(a1))
	assert.Equal(t, 0, a1.Compare(a1))
	assert.Equal(t, 1, a2.Compare(b1))
}

func TestAddress_Offset(t *testing.T) {
	a := MustParseAddress("B2")

	got, err := a.Offset(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "D3", got.String())

	got, err = a.Offset(-1, -1)
	require.NoError(t, err)
	assert.Equal(t, "A1", got.String())

	_, err = a.Offset(-2, 0)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = MustParseAddress("XFD1").Offset(0, 1)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", ColumnName(1))
	assert.Equal(t, "Z", ColumnName(26))
	assert.Equal(t, "AA", ColumnName(27))
	assert.Equal(t, "XFD", ColumnName(MaxColumns))
	assert.Equal(t, "", ColumnName(0))

	n, err := ColumnNumber("xfd")
	require.NoError(t, err)
	assert.Equal(t, MaxColumns, n)

	_, err = ColumnNumber("XFE")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
