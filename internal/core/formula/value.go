package formula

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindEmpty Kind = iota
	KindNumber
	KindDecimal
	KindText
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a scalar cell value.
// The zero Value is empty.
type Value struct {
	kind Kind
	num  float64
	dec  decimal.Decimal
	text string
	b    bool
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Number returns a binary floating point value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Decimal returns an exact decimal value.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromAny converts a raw scalar decoded from JSON or built in Go into a Value.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return Text(x.String())
	case decimal.Decimal:
		return Decimal(x)
	case bool:
		return Bool(x)
	case string:
		return Text(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the empty value.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsNumeric reports whether v holds a number or an exact decimal.
func (v Value) IsNumeric() bool {
	return v.kind == KindNumber || v.kind == KindDecimal
}

// Float returns v as float64. Booleans count as 1 and 0, empty as 0.
// The second result is false for text.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindDecimal:
		return v.dec.InexactFloat64(), true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindEmpty:
		return 0, true
	default:
		return 0, false
	}
}

// Decimal returns v as an exact decimal. Numbers convert through their
// shortest decimal representation.
func (v Value) Decimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindDecimal:
		return v.dec, true
	case KindNumber:
		return decimal.NewFromFloat(v.num), true
	default:
		return decimal.Decimal{}, false
	}
}

// Truthy reports whether v counts as true in a condition.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindDecimal:
		return !v.dec.IsZero()
	case KindText:
		return v.text != ""
	default:
		return false
	}
}

// String returns the canonical text form: "1500", "0.5", "TRUE", or the text itself.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindDecimal:
		return v.dec.String()
	case KindText:
		return v.text
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Literal returns the form substituted into formula text in place of a
// reference. Negative numbers are parenthesised and empty becomes 0.
func (v Value) Literal() string {
	switch v.kind {
	case KindEmpty:
		return "0"
	case KindNumber:
		if v.num < 0 {
			return "(" + formatNumber(v.num) + ")"
		}
	case KindDecimal:
		if v.dec.IsNegative() {
			return "(" + v.dec.String() + ")"
		}
	}
	return v.String()
}

// Native returns v as a plain Go value: nil, float64, string or bool.
// Decimals lose exactness; use String for the exact digits.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindDecimal:
		return v.dec.InexactFloat64()
	case KindText:
		return v.text
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same variant and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindDecimal:
		return v.dec.Equal(o.dec)
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
