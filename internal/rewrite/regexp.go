package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// RegexpSubstr rewrites regexp_substr(expr, pattern[, pos[, occurrence]])
// into regexp_extract(expr, pattern, pos-1). The occurrence argument is
// dropped. Patterns with a look-behind are stripped of it and the extraction
// is wrapped in a single-use CTE named by namer.
func RegexpSubstr(sql string, namer Namer) string {
	return replaceCalls(sql, nameIs("regexp_substr"), func(_ string, c call) (string, int, bool) {
		args := splitArgs(c.args)
		if len(args) < 2 {
			return "", 0, false
		}
		for i := range args {
			args[i] = RegexpSubstr(args[i], namer)
		}

		expr, pattern, pos := args[0], args[1], "0"
		if len(args) > 2 {
			pos = zeroBased(args[2])
		}

		if strings.Contains(pattern, "?<=") {
			name := namer.Next()
			pattern = strings.ReplaceAll(pattern, `(?<=\()`, `\(`)
			pattern = strings.ReplaceAll(pattern, "(?<=", "")
			return fmt.Sprintf("(WITH %s AS (SELECT regexp_extract(%s, %s, %s) as match) SELECT match FROM %s)",
				name, expr, pattern, pos, name), c.end, true
		}
		return fmt.Sprintf("regexp_extract(%s, %s, %s)", expr, pattern, pos), c.end, true
	})
}

// zeroBased turns a 1-based position argument into a 0-based one.
func zeroBased(pos string) string {
	if n, err := strconv.Atoi(pos); err == nil {
		return strconv.Itoa(n - 1)
	}
	return "(" + pos + ") - 1"
}

// RegexpInstr rewrites regexp_instr(expr, pattern[, pos]) into a scalar
// subquery returning the length of the first match, or 0 without one.
func RegexpInstr(sql string) string {
	return replaceCalls(sql, nameIs("regexp_instr"), func(_ string, c call) (string, int, bool) {
		args := splitArgs(c.args)
		if len(args) < 2 {
			return "", 0, false
		}
		expr, pattern := RegexpInstr(args[0]), RegexpInstr(args[1])
		return fmt.Sprintf("(WITH regexp_match AS (SELECT regexp_extract(%s, %s, 0) as match) "+
			"SELECT CASE WHEN match IS NOT NULL THEN length(match) ELSE 0 END FROM regexp_match)",
			expr, pattern), c.end, true
	})
}

// RegexpCount rewrites regexp_count(expr, pattern[, pos]) into a scalar
// subquery counting every match.
func RegexpCount(sql string) string {
	return replaceCalls(sql, nameIs("regexp_count"), func(_ string, c call) (string, int, bool) {
		args := splitArgs(c.args)
		if len(args) < 2 {
			return "", 0, false
		}
		expr, pattern := RegexpCount(args[0]), RegexpCount(args[1])
		return fmt.Sprintf("(WITH regexp_matches AS (SELECT regexp_extract_all(%s, %s) as matches) "+
			"SELECT size(matches) FROM regexp_matches)", expr, pattern), c.end, true
	})
}
