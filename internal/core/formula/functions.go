package formula

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// variadic marks a function without an upper argument bound.
const variadic = -1

// function is one entry of the allow-list.
type function struct {
	name    string
	minArgs int
	maxArgs int
	call    func(fn *function, args []Value) (Value, error)
}

// functions is the complete allow-list. Aliases share an implementation;
// call receives the entry the formula named, so errors carry that name.
var functions = map[string]*function{}

func init() {
	register := func(fn *function, aliases ...string) {
		functions[fn.name] = fn
		for _, alias := range aliases {
			clone := *fn
			clone.name = alias
			functions[alias] = &clone
		}
	}

	register(&function{name: "SUM", minArgs: 0, maxArgs: variadic, call: fnSum})
	register(&function{name: "AVERAGE", minArgs: 1, maxArgs: variadic, call: fnAverage}, "AVG")
	register(&function{name: "MIN", minArgs: 1, maxArgs: variadic, call: fnMin})
	register(&function{name: "MAX", minArgs: 1, maxArgs: variadic, call: fnMax})
	register(&function{name: "COUNT", minArgs: 0, maxArgs: variadic, call: fnCount})
	register(&function{name: "COUNTA", minArgs: 0, maxArgs: variadic, call: fnCountA})

	register(&function{name: "ABS", minArgs: 1, maxArgs: 1, call: unary(math.Abs)})
	register(&function{name: "ROUND", minArgs: 1, maxArgs: 2, call: fnRound})
	register(&function{name: "SQRT", minArgs: 1, maxArgs: 1, call: fnSqrt})
	register(&function{name: "POWER", minArgs: 2, maxArgs: 2, call: fnPower}, "POW")
	register(&function{name: "EXP", minArgs: 1, maxArgs: 1, call: unary(math.Exp)})
	register(&function{name: "LN", minArgs: 1, maxArgs: 1, call: fnLn})
	register(&function{name: "LOG", minArgs: 1, maxArgs: 2, call: fnLog})
	register(&function{name: "LOG10", minArgs: 1, maxArgs: 1, call: fnLog})

	register(&function{name: "SIN", minArgs: 1, maxArgs: 1, call: unary(math.Sin)})
	register(&function{name: "COS", minArgs: 1, maxArgs: 1, call: unary(math.Cos)})
	register(&function{name: "TAN", minArgs: 1, maxArgs: 1, call: unary(math.Tan)})
	register(&function{name: "ASIN", minArgs: 1, maxArgs: 1, call: fnASin})
	register(&function{name: "ACOS", minArgs: 1, maxArgs: 1, call: fnACos})
	register(&function{name: "ATAN", minArgs: 1, maxArgs: 1, call: unary(math.Atan)})

	register(&function{name: "PI", minArgs: 0, maxArgs: 0, call: constant(math.Pi)})
	register(&function{name: "E", minArgs: 0, maxArgs: 0, call: constant(math.E)})

	// IF is evaluated lazily by callNode; call is never used.
	register(&function{name: "IF", minArgs: 2, maxArgs: 3, call: func(*function, []Value) (Value, error) {
		return Value{}, nil
	}})
}

func lookupFunction(name string) (*function, bool) {
	fn, ok := functions[name]
	return fn, ok
}

// Functions returns the names on the allow-list.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	return names
}

func (fn *function) checkArity(n int) error {
	if n < fn.minArgs || (fn.maxArgs != variadic && n > fn.maxArgs) {
		var want string
		switch {
		case fn.maxArgs == variadic:
			want = fmt.Sprintf("at least %d", fn.minArgs)
		case fn.minArgs == fn.maxArgs:
			want = fmt.Sprintf("%d", fn.minArgs)
		default:
			want = fmt.Sprintf("%d to %d", fn.minArgs, fn.maxArgs)
		}
		return fmt.Errorf("%w: %s expects %s arguments, got %d", domain.ErrEvaluation, fn.name, want, n)
	}
	return nil
}

func (fn *function) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrEvaluation, fn.name, fmt.Sprintf(format, args...))
}

// numbers converts every argument or fails naming the offending position.
func numbers(name string, args []Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.Float()
		if !ok {
			return nil, fmt.Errorf("%w: %s: argument %d is not a number", domain.ErrEvaluation, name, i+1)
		}
		out[i] = f
	}
	return out, nil
}

func unary(f func(float64) float64) func(*function, []Value) (Value, error) {
	return func(fn *function, args []Value) (Value, error) {
		xs, err := numbers(fn.name, args)
		if err != nil {
			return Value{}, err
		}
		return Number(f(xs[0])), nil
	}
}

func constant(f float64) func(*function, []Value) (Value, error) {
	return func(*function, []Value) (Value, error) {
		return Number(f), nil
	}
}

func fnSum(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return Number(total), nil
}

func fnAverage(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return Number(total / float64(len(xs))), nil
}

func fnMin(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Min(m, x)
	}
	return Number(m), nil
}

func fnMax(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Max(m, x)
	}
	return Number(m), nil
}

func fnCount(_ *function, args []Value) (Value, error) {
	n := 0
	for _, a := range args {
		if a.IsNumeric() || a.Kind() == KindBool {
			n++
		}
	}
	return Number(float64(n)), nil
}

func fnCountA(_ *function, args []Value) (Value, error) {
	n := 0
	for _, a := range args {
		if !a.IsEmpty() {
			n++
		}
	}
	return Number(float64(n)), nil
}

// fnRound rounds half away from zero on the decimal representation, so
// ROUND(2.675, 2) is 2.68 rather than the binary 2.67.
func fnRound(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	places := 0.0
	if len(xs) == 2 {
		places = xs[1]
	}
	if places != math.Trunc(places) || math.Abs(places) > 15 {
		return Value{}, fn.errorf("digits must be an integer between -15 and 15")
	}
	rounded := decimal.NewFromFloat(xs[0]).Round(int32(places))
	return Number(rounded.InexactFloat64()), nil
}

func fnSqrt(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] < 0 {
		return Value{}, fn.errorf("math domain error")
	}
	return Number(math.Sqrt(xs[0])), nil
}

func fnPower(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] == 0 && xs[1] < 0 {
		return Value{}, fn.errorf("zero raised to a negative power")
	}
	r := math.Pow(xs[0], xs[1])
	if math.IsNaN(r) {
		return Value{}, fn.errorf("math domain error")
	}
	return Number(r), nil
}

func fnLn(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] <= 0 {
		return Value{}, fn.errorf("math domain error")
	}
	return Number(math.Log(xs[0])), nil
}

func fnLog(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] <= 0 {
		return Value{}, fn.errorf("math domain error")
	}
	if len(xs) == 1 {
		return Number(math.Log10(xs[0])), nil
	}
	if xs[1] <= 0 || xs[1] == 1 {
		return Value{}, fn.errorf("invalid base")
	}
	return Number(math.Log(xs[0]) / math.Log(xs[1])), nil
}

func fnASin(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] < -1 || xs[0] > 1 {
		return Value{}, fn.errorf("math domain error")
	}
	return Number(math.Asin(xs[0])), nil
}

func fnACos(fn *function, args []Value) (Value, error) {
	xs, err := numbers(fn.name, args)
	if err != nil {
		return Value{}, err
	}
	if xs[0] < -1 || xs[0] > 1 {
		return Value{}, fn.errorf("math domain error")
	}
	return Number(math.Acos(xs[0])), nil
}
