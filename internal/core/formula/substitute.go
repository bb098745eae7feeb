package formula

import (
	"strings"
)

// Reference is one reference-shaped span of expression text: a cell, a
// range, or a qualified reference such as table_2!A1 or 'Info'!B3.
type Reference struct {
	Text  string
	Start int
	End   int
	// InSum is set when the span is the only argument of a SUM call.
	InSum bool
}

// IsExternal reports whether the span carries a table qualifier.
func (r Reference) IsExternal() bool { return strings.Contains(r.Text, "!") }

// IsRange reports whether the span is an unqualified range.
func (r Reference) IsRange() bool { return !r.IsExternal() && strings.Contains(r.Text, ":") }

// References scans expr for reference-shaped spans. Function names, numbers
// and double-quoted text are skipped; a span is reported only if it could
// name a cell, and callers decide what it resolves to.
func References(expr string) []Reference {
	var refs []Reference
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '"':
			i = skipQuoted(expr, i, '"')
		case c == '\'':
			end := skipQuoted(expr, i, '\'')
			if end < len(expr) && expr[end] == '!' {
				stop := scanCellPart(expr, end+1)
				if stop > end+1 {
					refs = append(refs, newReference(expr, i, stop))
				}
				i = stop
				continue
			}
			i = end
		case isDigit(c) || c == '.':
			i = scanWord(expr, i)
		case isWordStart(c):
			stop := scanWord(expr, i)
			if stop < len(expr) && expr[stop] == '(' {
				i = stop
				continue
			}
			switch {
			case stop < len(expr) && expr[stop] == '!':
				if cell := scanCellPart(expr, stop+1); cell > stop+1 {
					stop = cell
				}
			case stop+1 < len(expr) && expr[stop] == ':' && isWordStart(expr[stop+1]):
				stop = scanWord(expr, stop+1)
			}
			refs = append(refs, newReference(expr, i, stop))
			i = stop
		default:
			i++
		}
	}
	return refs
}

// SoleReference returns the reference when expr consists of nothing else.
func SoleReference(expr string) (Reference, bool) {
	trimmed := strings.TrimSpace(expr)
	refs := References(trimmed)
	if len(refs) != 1 || refs[0].Start != 0 || refs[0].End != len(trimmed) {
		return Reference{}, false
	}
	return refs[0], true
}

// Substitute rewrites expr, replacing every reference span for which
// replace returns true. Text between spans is copied unchanged, so a
// replacement can never merge with a neighbouring name or number.
func Substitute(expr string, replace func(Reference) (string, bool)) string {
	var b strings.Builder
	last := 0
	for _, ref := range References(expr) {
		text, ok := replace(ref)
		if !ok {
			continue
		}
		b.WriteString(expr[last:ref.Start])
		b.WriteString(text)
		last = ref.End
	}
	if last == 0 {
		return expr
	}
	b.WriteString(expr[last:])
	return b.String()
}

func newReference(expr string, start, end int) Reference {
	return Reference{
		Text:  expr[start:end],
		Start: start,
		End:   end,
		InSum: soleSumArgument(expr, start, end),
	}
}

// soleSumArgument reports whether expr[start:end] is wrapped as SUM( ... ).
func soleSumArgument(expr string, start, end int) bool {
	before := strings.TrimRight(expr[:start], " ")
	after := strings.TrimLeft(expr[end:], " ")
	if !strings.HasSuffix(before, "(") || !strings.HasPrefix(after, ")") {
		return false
	}
	name := strings.TrimRight(before[:len(before)-1], " ")
	if len(name) < 3 || !strings.EqualFold(name[len(name)-3:], "SUM") {
		return false
	}
	return len(name) == 3 || !isWordPart(name[len(name)-4])
}

func skipQuoted(expr string, i int, quote byte) int {
	for j := i + 1; j < len(expr); j++ {
		if expr[j] == quote {
			if j+1 < len(expr) && expr[j+1] == quote {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(expr)
}

// scanCellPart consumes the cell or range after a qualifier.
func scanCellPart(expr string, i int) int {
	stop := scanWord(expr, i)
	if stop+1 < len(expr) && expr[stop] == ':' && isWordStart(expr[stop+1]) {
		stop = scanWord(expr, stop+1)
	}
	return stop
}

func scanWord(expr string, i int) int {
	for i < len(expr) && (isWordPart(expr[i]) || expr[i] == '.') {
		i++
	}
	return i
}

func isWordStart(c byte) bool {
	return isIdentStart(c) || c == '$'
}

func isWordPart(c byte) bool {
	return isIdentPart(c) || c == '$'
}
