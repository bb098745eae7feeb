package formula

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Evaluate interprets expression text whose references have already been
// replaced by literals.
//
// Empty text yields empty text and a bare numeric literal yields its number.
// Text that does not tokenise or parse is returned unchanged as a text value
// with a nil error. Constructs outside the allow-list fail with an error
// wrapping domain.ErrUnsupportedExpression; runtime failures inside allowed
// functions and operators wrap domain.ErrEvaluation.
func Evaluate(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Text(text), nil
	}
	if f, ok := numericLiteral(trimmed); ok {
		return Number(f), nil
	}

	tokens, err := NewLexer(trimmed).Tokenize()
	if err != nil {
		return Text(text), nil
	}
	tree, err := NewParser(tokens).Parse()
	if err != nil {
		if errors.Is(err, errParse) {
			return Text(text), nil
		}
		return Value{}, err
	}
	return tree.eval()
}

// numericLiteral accepts plain decimal literals only; ParseFloat on its own
// would also take "Inf", "NaN" and hex forms.
func numericLiteral(s string) (float64, bool) {
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" {
		return 0, false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !isDigit(c) && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return 0, false
		}
	}
	if !isDigit(body[0]) && body[0] != '.' {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
