package formula

import (
	"errors"
	"fmt"
	"strings"
)

// TokenType represents the kinds of tokens in substituted formula text.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenIdentifier
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenComma

	// The remaining tokens are recognised only so the parser can reject them
	// as unsupported constructs rather than treating them as plain text.
	TokenString
	TokenDot
	TokenLeftBracket
	TokenRightBracket
)

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// errLex marks text that does not tokenise; evaluation degrades to text.
var errLex = errors.New("unrecognised input")

// operators ordered longest first so "**" wins over "*".
var operators = []string{"**", "//", "<=", ">=", "<>", "!=", "==", "+", "-", "*", "/", "%", "=", "<", ">"}

// Lexer tokenizes formula text after reference substitution.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns the token stream terminated by TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
			if err := l.lexNumber(); err != nil {
				return nil, err
			}
		case isIdentStart(c):
			l.lexIdentifier()
		case c == '(':
			l.emit(TokenLeftParen, "(", 1)
		case c == ')':
			l.emit(TokenRightParen, ")", 1)
		case c == ',':
			l.emit(TokenComma, ",", 1)
		case c == '.':
			l.emit(TokenDot, ".", 1)
		case c == '[':
			l.emit(TokenLeftBracket, "[", 1)
		case c == ']':
			l.emit(TokenRightBracket, "]", 1)
		case c == '"' || c == '\'':
			if err := l.lexString(c); err != nil {
				return nil, err
			}
		default:
			if !l.lexOperator() {
				return nil, fmt.Errorf("%w: %q at %d", errLex, c, l.pos)
			}
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
	return l.tokens, nil
}

func (l *Lexer) emit(tt TokenType, value string, width int) {
	l.tokens = append(l.tokens, Token{Type: tt, Value: value, Pos: l.pos})
	l.pos += width
}

func (l *Lexer) lexNumber() error {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		p := l.pos + 1
		if p < len(l.input) && (l.input[p] == '+' || l.input[p] == '-') {
			p++
		}
		if p >= len(l.input) || !isDigit(l.input[p]) {
			return fmt.Errorf("%w: malformed exponent at %d", errLex, l.pos)
		}
		for p < len(l.input) && isDigit(l.input[p]) {
			p++
		}
		l.pos = p
	}
	// a number glued to letters ("12abc") is not a literal
	if l.pos < len(l.input) && isIdentStart(l.input[l.pos]) {
		return fmt.Errorf("%w: malformed number at %d", errLex, start)
	}
	l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start})
	return nil
}

func (l *Lexer) lexIdentifier() {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	l.tokens = append(l.tokens, Token{Type: TokenIdentifier, Value: l.input[start:l.pos], Pos: start})
}

func (l *Lexer) lexString(quote byte) error {
	start := l.pos
	end := strings.IndexByte(l.input[start+1:], quote)
	if end < 0 {
		return fmt.Errorf("%w: unterminated string at %d", errLex, start)
	}
	l.pos = start + 1 + end + 1
	l.tokens = append(l.tokens, Token{Type: TokenString, Value: l.input[start:l.pos], Pos: start})
	return nil
}

func (l *Lexer) lexOperator() bool {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.emit(TokenOperator, op, len(op))
			return true
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
