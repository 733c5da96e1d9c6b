package rewrite

import "strings"

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// quotedEnd returns the offset just past the quoted region opening at s[i].
// A doubled quote character is an escaped quote; inside string literals a
// backslash escapes the next byte. Unterminated regions run to the end of s.
func quotedEnd(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch {
		case q == '\'' && s[j] == '\\':
			j++
		case s[j] == q:
			if j+1 < len(s) && s[j+1] == q {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// opaqueEnd reports whether s[i] opens a quoted region or a comment and
// returns the offset just past it. No rewrite looks inside either.
func opaqueEnd(s string, i int) (int, bool) {
	switch {
	case isQuote(s[i]):
		return quotedEnd(s, i), true
	case strings.HasPrefix(s[i:], "--"):
		if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
			return i + nl, true
		}
		return len(s), true
	case strings.HasPrefix(s[i:], "/*"):
		if end := strings.Index(s[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 2, true
		}
		return len(s), true
	}
	return 0, false
}

// closingParen returns the offset of the ')' matching the '(' at s[open],
// or -1 when the parentheses are unbalanced.
func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); {
		if end, ok := opaqueEnd(s, i); ok {
			i = end
			continue
		}
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitArgs splits an argument list on top-level commas and trims each
// argument.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); {
		if end, ok := opaqueEnd(s, i); ok {
			i = end
			continue
		}
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
		i++
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// prevNonSpace returns the last byte before s[i] that is not whitespace, or
// 0 at the start of s.
func prevNonSpace(s string, i int) byte {
	for i--; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

// prevWord returns the identifier ending right before s[i], skipping
// whitespace.
func prevWord(s string, i int) string {
	end := i
	for end > 0 && isSpace(s[end-1]) {
		end--
	}
	start := end
	for start > 0 && isIdentChar(s[start-1]) {
		start--
	}
	return s[start:end]
}

// matchWords matches words case-insensitively at s[i], separated by
// whitespace, and returns the offset after the last one.
func matchWords(s string, i int, words ...string) (int, bool) {
	for k, w := range words {
		if k > 0 {
			j := skipSpace(s, i)
			if j == i {
				return 0, false
			}
			i = j
		}
		if len(s)-i < len(w) || !strings.EqualFold(s[i:i+len(w)], w) {
			return 0, false
		}
		i += len(w)
		if i < len(s) && isIdentChar(s[i]) {
			return 0, false
		}
	}
	return i, true
}

// call is a function call found in SQL text.
type call struct {
	name  string
	args  string // text between the parentheses
	start int    // offset of the name
	end   int    // offset just past ')'
}

// replaceCalls copies s and hands every call outside quoted text and
// comments whose name satisfies match to fn. When fn reports ok, its
// replacement stands in for s[c.start:end]; otherwise scanning continues
// inside the call, so nested calls are still seen.
func replaceCalls(s string, match func(name string) bool, fn func(s string, c call) (string, int, bool)) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		if end, ok := opaqueEnd(s, i); ok {
			out.WriteString(s[i:end])
			i = end
			continue
		}
		c := s[i]
		switch {
		case isIdentStart(c) || isDigit(c):
			j := i
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			name := s[i:j]
			if isIdentStart(c) && match(name) {
				open := skipSpace(s, j)
				if open < len(s) && s[open] == '(' {
					if closing := closingParen(s, open); closing >= 0 {
						repl, end, ok := fn(s, call{name: name, args: s[open+1 : closing], start: i, end: closing + 1})
						if ok {
							out.WriteString(repl)
							i = end
							continue
						}
					}
				}
			}
			out.WriteString(name)
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func nameIs(want string) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(name, want)
	}
}

func anyName(string) bool { return true }
