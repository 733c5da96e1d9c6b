package rewrite

import (
	"strings"

	"github.com/leapstack-labs/transql/pkg/token"
)

// literalPrefixes introduce typed literals such as DATE '2024-01-01'; the
// string after them is not a concatenation operand.
var literalPrefixes = map[string]bool{
	"DATE":        true,
	"TIME":        true,
	"TIMESTAMP":   true,
	"TIMESTAMPTZ": true,
	"INTERVAL":    true,
}

// groupOpeners are keywords followed by parentheses that do not hold an
// expression.
var groupOpeners = map[string]bool{
	"AS":     true,
	"EXISTS": true,
	"FROM":   true,
	"GROUP":  true,
	"IN":     true,
	"JOIN":   true,
	"OVER":   true,
	"USING":  true,
}

// keywordCalls are reserved words that are also called like functions.
var keywordCalls = map[string]bool{
	"CAST":  true,
	"LEFT":  true,
	"RIGHT": true,
}

// Concat rewrites chains of operands joined by + into concat(...) when at
// least one operand is a string literal. Operands are string literals,
// possibly dotted identifiers, function calls and parenthesized groups.
// Operand text is kept byte for byte, apart from nested chains inside calls
// and groups, which are rewritten too.
//
// A chain next to an operator that binds tighter than + (such as * or ::) is
// left alone, as is one followed by a + whose operand is not part of it.
func Concat(sql string) string {
	return concat(sql, false)
}

// ConcatIdentifiers is Concat that also rewrites chains made only of bare
// identifiers, such as first_name + last_name. Numeric additions between
// columns are rewritten too, so it suits sources where + between columns is
// always string concatenation.
func ConcatIdentifiers(sql string) string {
	return concat(sql, true)
}

func concat(sql string, identifiers bool) string {
	var out strings.Builder
	out.Grow(len(sql))

	for i := 0; i < len(sql); {
		c := sql[i]
		if c == '\'' || c == '`' || c == '(' || isIdentStart(c) {
			if operands, end, ok := concatChain(sql, i, identifiers); ok {
				out.WriteString("concat(")
				out.WriteString(strings.Join(operands, ", "))
				out.WriteString(")")
				i = end
				continue
			}
		}
		if end, ok := opaqueEnd(sql, i); ok {
			out.WriteString(sql[i:end])
			i = end
			continue
		}

		switch {
		case isIdentStart(c) || isDigit(c):
			j := i
			for j < len(sql) && isIdentChar(sql[j]) {
				j++
			}
			out.WriteString(sql[i:j])
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func concatChain(s string, start int, identifiers bool) ([]string, int, bool) {
	if !chainMayStart(s, start) {
		return nil, 0, false
	}

	var operands []string
	var kinds []operandKind
	hasLiteral, onlyIdents := false, true
	end := start
	for i := start; ; {
		opEnd, kind, ok := concatOperand(s, i)
		if !ok {
			break
		}
		operands = append(operands, s[i:opEnd])
		kinds = append(kinds, kind)
		hasLiteral = hasLiteral || kind == operandLiteral
		onlyIdents = onlyIdents && kind == operandIdent
		end = opEnd

		plus := skipSpace(s, opEnd)
		if plus >= len(s) || s[plus] != '+' {
			break
		}
		i = skipSpace(s, plus+1)
	}

	if len(operands) < 2 || !chainMayEnd(s, end) {
		return nil, 0, false
	}
	if !hasLiteral && !(identifiers && onlyIdents) {
		return nil, 0, false
	}
	for i, kind := range kinds {
		if kind == operandNested {
			operands[i] = concat(operands[i], identifiers)
		}
	}
	return operands, end, true
}

func chainMayStart(s string, start int) bool {
	switch prevNonSpace(s, start) {
	case '*', '/', '%', '-', '+', '.', ':':
		return false
	}
	switch {
	case s[start] == '\'':
		return !literalPrefixes[strings.ToUpper(prevWord(s, start))]
	case s[start] == '(':
		// Parentheses after a function name or a clause word such as IN or
		// OVER are not a group.
		word := prevWord(s, start)
		if word == "" {
			return true
		}
		return token.IsReserved(word) && !groupOpeners[strings.ToUpper(word)]
	}
	return true
}

func chainMayEnd(s string, end int) bool {
	next := skipSpace(s, end)
	if next >= len(s) {
		return true
	}
	switch s[next] {
	case '*', '/', '%', '(', '.', ':', '[', '+':
		return false
	}
	return true
}

type operandKind int

const (
	operandLiteral operandKind = iota // 'text'
	operandIdent                      // col, t.col, `quoted col`
	operandNested                     // a call or a parenthesized group
)

// concatOperand parses one operand at s[i] and returns its end offset and
// kind.
func concatOperand(s string, i int) (int, operandKind, bool) {
	if i >= len(s) {
		return 0, 0, false
	}

	switch c := s[i]; {
	case c == '\'':
		end := quotedEnd(s, i)
		if end-i < 2 || s[end-1] != '\'' {
			return 0, 0, false
		}
		return end, operandLiteral, true
	case c == '(':
		closing := closingParen(s, i)
		if closing < 0 {
			return 0, 0, false
		}
		return closing + 1, operandNested, true
	}

	// Identifier, possibly dotted and backtick-quoted, possibly a call.
	j, parts := i, 0
	for {
		switch {
		case j < len(s) && s[j] == '`':
			j = quotedEnd(s, j)
		case j < len(s) && isIdentStart(s[j]):
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
		default:
			return 0, 0, false
		}
		parts++
		if j+1 < len(s) && s[j] == '.' && (s[j+1] == '`' || isIdentStart(s[j+1])) {
			j++
			continue
		}
		break
	}

	word := s[i:j]
	open := skipSpace(s, j)
	isCall := open < len(s) && s[open] == '(' && parts == 1
	if parts == 1 && s[i] != '`' && token.IsReserved(word) {
		if !isCall || !keywordCalls[strings.ToUpper(word)] {
			return 0, 0, false
		}
	}
	if isCall {
		closing := closingParen(s, open)
		if closing < 0 {
			return 0, 0, false
		}
		return closing + 1, operandNested, true
	}
	return j, operandIdent, true
}
