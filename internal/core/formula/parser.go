package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// errParse marks text that does not fit the grammar; evaluation degrades to text.
var errParse = errors.New("parse error")

// Parser is a recursive-descent parser producing the closed expression tree.
//
// Grammar, loosest binding first:
//
//	comparison := additive (("=" | "==" | "<>" | "!=" | "<" | "<=" | ">" | ">=") additive)*
//	additive   := term (("+" | "-") term)*
//	term       := unary (("*" | "/" | "//" | "%") unary)*
//	unary      := ("+" | "-") unary | power
//	power      := postfix ("**" unary)?
//	postfix    := primary ("." NAME | "[" comparison "]" | "(" args ")")*
//	primary    := NUMBER | NAME | NAME "(" args ")" | "(" comparison ")" | STRING | "[" args "]"
//
// Constructs that are well formed but outside the allow-list do not stop the
// parse. The first one is recorded and reported once the whole input has
// parsed, so malformed text still degrades to plain text.
type Parser struct {
	tokens   []Token
	pos      int
	rejected error
}

// NewParser creates a parser over a token stream produced by Lexer.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream. Errors wrap errParse for malformed
// input and domain.ErrUnsupportedExpression for constructs outside the
// allow-list.
func (p *Parser) Parse() (node, error) {
	n, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	if p.rejected != nil {
		return nil, p.rejected
	}
	return n, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.Type != TokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Value == op {
			return op, true
		}
	}
	return "", false
}

func (p *Parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOperator("=", "==", "<>", "!=", "<", "<=", ">", ">=")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: binaryOps[op], symbol: op, left: left, right: right}
	}
}

func (p *Parser) parseAdditive() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOperator("+", "-")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: binaryOps[op], symbol: op, left: left, right: right}
	}
}

func (p *Parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOperator("*", "/", "//", "%")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: binaryOps[op], symbol: op, left: left, right: right}
	}
}

func (p *Parser) parseUnary() (node, error) {
	if op, ok := p.isOperator("+", "-"); ok {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return &negateNode{operand: operand}, nil
		}
		return &plusNode{operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if _, ok := p.isOperator("**"); !ok {
		return base, nil
	}
	p.next()
	// right associative: 2**3**2 == 2**(3**2), and 2**-1 is allowed
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: BinOpPower, symbol: "**", left: base, right: exp}, nil
}

func (p *Parser) parsePostfix() (node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); tok.Type {
		case TokenDot:
			p.next()
			attr := p.next()
			if attr.Type != TokenIdentifier {
				return nil, p.unexpected(attr)
			}
			p.reject(fmt.Errorf("%w: attribute access .%s", domain.ErrUnsupportedExpression, attr.Value))
		case TokenLeftBracket:
			p.next()
			if _, err := p.parseComparison(); err != nil {
				return nil, err
			}
			if closing := p.next(); closing.Type != TokenRightBracket {
				return nil, p.unexpected(closing)
			}
			p.reject(fmt.Errorf("%w: subscript at %d", domain.ErrUnsupportedExpression, tok.Pos))
		case TokenLeftParen:
			p.next()
			if _, err := p.parseArgs(TokenRightParen); err != nil {
				return nil, err
			}
			p.reject(fmt.Errorf("%w: call on an expression result", domain.ErrUnsupportedExpression))
		default:
			return n, nil
		}
		n = rejectedNode{}
	}
}

func (p *Parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: number %q", errParse, tok.Value)
		}
		return &numberNode{value: f}, nil

	case TokenLeftParen:
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != TokenRightParen {
			return nil, p.unexpected(closing)
		}
		return inner, nil

	case TokenIdentifier:
		return p.parseName(tok)

	case TokenString:
		return p.reject(fmt.Errorf("%w: string literal %s", domain.ErrUnsupportedExpression, tok.Value)), nil

	case TokenLeftBracket:
		if _, err := p.parseArgs(TokenRightBracket); err != nil {
			return nil, err
		}
		return p.reject(fmt.Errorf("%w: list literal at %d", domain.ErrUnsupportedExpression, tok.Pos)), nil

	default:
		return nil, p.unexpected(tok)
	}
}

// parseName handles constants, TRUE/FALSE and allow-listed calls.
func (p *Parser) parseName(tok Token) (node, error) {
	name := strings.ToUpper(tok.Value)
	if p.peek().Type == TokenLeftParen {
		return p.parseCall(tok, name)
	}

	switch name {
	case "TRUE":
		return &boolNode{value: true}, nil
	case "FALSE":
		return &boolNode{value: false}, nil
	case "PI":
		return &numberNode{value: math.Pi}, nil
	case "E":
		return &numberNode{value: math.E}, nil
	}
	return p.reject(fmt.Errorf("%w: name %s is not allowed", domain.ErrUnsupportedExpression, tok.Value)), nil
}

func (p *Parser) parseCall(tok Token, name string) (node, error) {
	p.next() // (
	args, err := p.parseArgs(TokenRightParen)
	if err != nil {
		return nil, err
	}

	fn, ok := lookupFunction(name)
	if !ok {
		return p.reject(fmt.Errorf("%w: function %s is not allowed", domain.ErrUnsupportedExpression, tok.Value)), nil
	}
	if err := fn.checkArity(len(args)); err != nil {
		return p.reject(err), nil
	}
	return &callNode{fn: fn, args: args}, nil
}

// parseArgs parses a comma separated list after its opening token has been
// consumed, up to and including the closing token.
func (p *Parser) parseArgs(closing TokenType) ([]node, error) {
	var args []node
	if p.peek().Type == closing {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		sep := p.next()
		if sep.Type == closing {
			return args, nil
		}
		if sep.Type != TokenComma {
			return nil, p.unexpected(sep)
		}
	}
}

// reject records the first disallowed construct and returns a placeholder
// so parsing can continue.
func (p *Parser) reject(err error) node {
	if p.rejected == nil {
		p.rejected = err
	}
	return rejectedNode{}
}

func (p *Parser) unexpected(tok Token) error {
	if tok.Type == TokenEOF {
		return fmt.Errorf("%w: unexpected end of input", errParse)
	}
	return fmt.Errorf("%w: unexpected %q at %d", errParse, tok.Value, tok.Pos)
}
