package formula

import (
	"fmt"
	"math"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// node is the closed expression tree produced by the parser. Only the types
// in this file implement it, so the interpreter cannot reach anything else.
type node interface {
	eval() (Value, error)
}

// BinaryOp represents binary operators in expression nodes.
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
	BinOpFloorDivide
	BinOpModulo
	BinOpPower
	BinOpEqual
	BinOpNotEqual
	BinOpLess
	BinOpLessEqual
	BinOpGreater
	BinOpGreaterEqual
)

var binaryOps = map[string]BinaryOp{
	"+":  BinOpAdd,
	"-":  BinOpSubtract,
	"*":  BinOpMultiply,
	"/":  BinOpDivide,
	"//": BinOpFloorDivide,
	"%":  BinOpModulo,
	"**": BinOpPower,
	"=":  BinOpEqual,
	"==": BinOpEqual,
	"<>": BinOpNotEqual,
	"!=": BinOpNotEqual,
	"<":  BinOpLess,
	"<=": BinOpLessEqual,
	">":  BinOpGreater,
	">=": BinOpGreaterEqual,
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval() (Value, error) {
	return Number(n.value), nil
}

type boolNode struct {
	value bool
}

func (n *boolNode) eval() (Value, error) {
	return Bool(n.value), nil
}

type negateNode struct {
	operand node
}

func (n *negateNode) eval() (Value, error) {
	v, err := n.operand.eval()
	if err != nil {
		return Value{}, err
	}
	f, err := operand(v, "-")
	if err != nil {
		return Value{}, err
	}
	return Number(-f), nil
}

type plusNode struct {
	operand node
}

func (n *plusNode) eval() (Value, error) {
	v, err := n.operand.eval()
	if err != nil {
		return Value{}, err
	}
	f, err := operand(v, "+")
	if err != nil {
		return Value{}, err
	}
	return Number(f), nil
}

type binaryNode struct {
	op          BinaryOp
	symbol      string
	left, right node
}

func (n *binaryNode) eval() (Value, error) {
	lv, err := n.left.eval()
	if err != nil {
		return Value{}, err
	}
	rv, err := n.right.eval()
	if err != nil {
		return Value{}, err
	}
	a, err := operand(lv, n.symbol)
	if err != nil {
		return Value{}, err
	}
	b, err := operand(rv, n.symbol)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case BinOpAdd:
		return checked(a+b, n.symbol)
	case BinOpSubtract:
		return checked(a-b, n.symbol)
	case BinOpMultiply:
		return checked(a*b, n.symbol)
	case BinOpDivide:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: division by zero", domain.ErrEvaluation)
		}
		return checked(a/b, n.symbol)
	case BinOpFloorDivide:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: integer division by zero", domain.ErrEvaluation)
		}
		return checked(math.Floor(a/b), n.symbol)
	case BinOpModulo:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: modulo by zero", domain.ErrEvaluation)
		}
		return checked(a-b*math.Floor(a/b), n.symbol)
	case BinOpPower:
		if a == 0 && b < 0 {
			return Value{}, fmt.Errorf("%w: zero raised to a negative power", domain.ErrEvaluation)
		}
		return checked(math.Pow(a, b), n.symbol)
	case BinOpEqual:
		return Bool(a == b), nil
	case BinOpNotEqual:
		return Bool(a != b), nil
	case BinOpLess:
		return Bool(a < b), nil
	case BinOpLessEqual:
		return Bool(a <= b), nil
	case BinOpGreater:
		return Bool(a > b), nil
	case BinOpGreaterEqual:
		return Bool(a >= b), nil
	default:
		return Value{}, fmt.Errorf("%w: operator %s", domain.ErrUnsupportedExpression, n.symbol)
	}
}

type callNode struct {
	fn   *function
	args []node
}

func (n *callNode) eval() (Value, error) {
	if n.fn.name == "IF" {
		return n.evalIf()
	}
	values := make([]Value, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval()
		if err != nil {
			return Value{}, err
		}
		values[i] = v
	}
	v, err := n.fn.call(n.fn, values)
	if err != nil {
		return Value{}, err
	}
	if v.kind == KindNumber {
		return checked(v.num, n.fn.name)
	}
	return v, nil
}

// evalIf evaluates only the branch selected by the condition.
func (n *callNode) evalIf() (Value, error) {
	cond, err := n.args[0].eval()
	if err != nil {
		return Value{}, err
	}
	if cond.Truthy() {
		return n.args[1].eval()
	}
	if len(n.args) < 3 {
		return Bool(false), nil
	}
	return n.args[2].eval()
}

func operand(v Value, op string) (float64, error) {
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("%w: operator %s does not accept %s operand", domain.ErrEvaluation, op, v.Kind())
	}
	return f, nil
}

func checked(f float64, what string) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %s: result is not a finite number", domain.ErrEvaluation, what)
	}
	return Number(f), nil
}

// rejectedNode stands in for a construct the parser refused. Parse never
// returns a tree containing one.
type rejectedNode struct{}

func (rejectedNode) eval() (Value, error) {
	return Value{}, fmt.Errorf("%w: rejected construct", domain.ErrUnsupportedExpression)
}
