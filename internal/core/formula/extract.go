package formula

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/efp"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// MaxRangeCells bounds the expansion of a single range. Larger ranges are
// left out of the dependency set.
const MaxRangeCells = 1_000_000

// Dependencies is the static reference set of one expression.
type Dependencies struct {
	// Direct holds every referenced address of the owning table, range
	// members included, sorted row-major without duplicates.
	Direct []domain.Address
	// Ranges maps a range key (upper case, $ removed) to its members in
	// row-major order.
	Ranges map[string][]domain.Address
	// RangeTokens maps a range key to the spellings found in the text.
	RangeTokens map[string][]string
	// External holds qualified references in first-seen order, normalised
	// by ExternalKey.
	External []string
	// Tokens maps a direct address to the spellings found in the text.
	Tokens map[domain.Address][]string
}

// IsEmpty reports whether the expression references nothing.
func (d Dependencies) IsEmpty() bool {
	return len(d.Direct) == 0 && len(d.External) == 0
}

// Extract collects cell, range and external references from an expression
// without evaluating it. Operands that do not parse as addresses are
// ignored, so Extract never fails.
func Extract(expr string) Dependencies {
	deps := Dependencies{
		Ranges:      make(map[string][]domain.Address),
		RangeTokens: make(map[string][]string),
		Tokens:      make(map[domain.Address][]string),
	}
	direct := make(map[domain.Address]struct{})
	external := make(map[string]struct{})

	tokens, ok := parseTokens(expr)
	if !ok {
		return deps
	}
	for _, token := range tokens {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		ref := strings.TrimSpace(token.TValue)

		switch {
		case strings.Contains(ref, "!"):
			ref = ExternalKey(ref)
			if _, seen := external[ref]; !seen {
				external[ref] = struct{}{}
				deps.External = append(deps.External, ref)
			}

		case strings.Contains(ref, ":"):
			key := RangeKey(ref)
			cells, err := ExpandRange(key)
			if err != nil {
				continue
			}
			if _, seen := deps.Ranges[key]; !seen {
				deps.Ranges[key] = cells
				for _, addr := range cells {
					direct[addr] = struct{}{}
				}
			}
			deps.RangeTokens[key] = appendUnique(deps.RangeTokens[key], ref)

		default:
			addr, err := domain.ParseAddress(ref)
			if err != nil {
				continue
			}
			direct[addr] = struct{}{}
			deps.Tokens[addr] = appendUnique(deps.Tokens[addr], ref)
		}
	}

	deps.Direct = make([]domain.Address, 0, len(direct))
	for addr := range direct {
		deps.Direct = append(deps.Direct, addr)
	}
	sort.Slice(deps.Direct, func(i, j int) bool { return deps.Direct[i].Less(deps.Direct[j]) })
	return deps
}

// ExternalKey normalises a qualified reference: "'My Sheet'!$B$3" becomes
// "My Sheet!B3". Quoted qualifiers may contain doubled quotes.
func ExternalKey(text string) string {
	text = strings.TrimSpace(text)
	i := strings.LastIndex(text, "!")
	if i < 0 {
		return text
	}
	qualifier, cell := text[:i], text[i+1:]
	if len(qualifier) >= 2 && qualifier[0] == '\'' && qualifier[len(qualifier)-1] == '\'' {
		qualifier = strings.ReplaceAll(qualifier[1:len(qualifier)-1], "''", "'")
	}
	return qualifier + "!" + strings.ToUpper(strings.ReplaceAll(cell, "$", ""))
}

// SplitExternal splits a normalised key into its qualifier and cell text.
func SplitExternal(key string) (qualifier, cell string) {
	i := strings.LastIndex(key, "!")
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

// RangeKey normalises range text: "$b$2:B$9" becomes "B2:B9".
func RangeKey(text string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), "$", ""))
}

// ExpandRange lists the members of "A1:B2" style text in row-major order.
// Reversed corners are normalised.
func ExpandRange(text string) ([]domain.Address, error) {
	from, to, found := strings.Cut(text, ":")
	if !found {
		return nil, fmt.Errorf("%w: %q is not a range", domain.ErrInvalidAddress, text)
	}
	a, err := domain.ParseAddress(from)
	if err != nil {
		return nil, err
	}
	b, err := domain.ParseAddress(to)
	if err != nil {
		return nil, err
	}

	top, bottom := min(a.Row, b.Row), max(a.Row, b.Row)
	left, right := min(a.Column, b.Column), max(a.Column, b.Column)
	rows, cols := bottom-top+1, right-left+1
	if rows*cols > MaxRangeCells {
		return nil, fmt.Errorf("%w: range %s spans %d cells", domain.ErrInvalidAddress, text, rows*cols)
	}

	cells := make([]domain.Address, 0, rows*cols)
	for r := top; r <= bottom; r++ {
		for c := left; c <= right; c++ {
			cells = append(cells, domain.Address{Row: r, Column: c})
		}
	}
	return cells, nil
}

// CheckSyntax reports structural problems the engine can detect before
// evaluation: empty text, unbalanced parentheses and unrecognised tokens.
func CheckSyntax(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: empty expression", domain.ErrSyntax)
	}
	if err := checkParentheses(expr); err != nil {
		return err
	}

	tokens, ok := parseTokens(expr)
	if !ok {
		return fmt.Errorf("%w: cannot tokenise %q", domain.ErrSyntax, expr)
	}
	depth := 0
	for _, token := range tokens {
		switch {
		case token.TType == efp.TokenTypeUnknown:
			return fmt.Errorf("%w: unexpected %q", domain.ErrSyntax, token.TValue)
		case token.TSubType == efp.TokenSubTypeStart:
			depth++
		case token.TSubType == efp.TokenSubTypeStop:
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced parentheses", domain.ErrSyntax)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced parentheses", domain.ErrSyntax)
	}
	return nil
}

// checkParentheses counts brackets outside quoted text.
func checkParentheses(expr string) error {
	depth := 0
	var quote rune
	for i, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unmatched ) at %d", domain.ErrSyntax, i)
			}
		}
	}
	if quote != 0 {
		return fmt.Errorf("%w: unterminated quote", domain.ErrSyntax)
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed (", domain.ErrSyntax, depth)
	}
	return nil
}

// parseTokens runs the efp tokenizer. It reports false if the tokenizer
// panics on input it was not written for.
func parseTokens(expr string) (tokens []efp.Token, ok bool) {
	defer func() {
		if recover() != nil {
			tokens, ok = nil, false
		}
	}()
	ps := efp.ExcelParser()
	return ps.Parse("=" + strings.TrimPrefix(strings.TrimSpace(expr), "=")), true
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
