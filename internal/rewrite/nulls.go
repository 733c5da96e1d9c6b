package rewrite

import "strings"

// IgnoreNulls rewrites FUNC(expr) IGNORE NULLS OVER (...) into
// FUNC(CASE WHEN expr IS NOT NULL THEN expr END) OVER (...). FIRST_VALUE and
// LAST_VALUE are handled first, then any other function. RESPECT NULLS is the
// default behavior and is dropped.
func IgnoreNulls(sql string) string {
	firstLast := func(name string) bool {
		return strings.EqualFold(name, "FIRST_VALUE") || strings.EqualFold(name, "LAST_VALUE")
	}
	sql = nullTreatment(sql, firstLast)
	return nullTreatment(sql, anyName)
}

func nullTreatment(sql string, match func(string) bool) string {
	return replaceCalls(sql, match, func(s string, c call) (string, int, bool) {
		after := skipSpace(s, c.end)
		end, ignore := matchWords(s, after, "IGNORE", "NULLS", "OVER")
		if !ignore {
			var respect bool
			if end, respect = matchWords(s, after, "RESPECT", "NULLS", "OVER"); !respect {
				return "", 0, false
			}
		}

		args := splitArgs(nullTreatment(c.args, match))
		if ignore && len(args) > 0 {
			// Only the value argument skips nulls; offsets and defaults stay.
			e := args[0]
			args[0] = "CASE WHEN " + e + " IS NOT NULL THEN " + e + " END"
		}
		return c.name + "(" + strings.Join(args, ", ") + ") OVER", end, true
	})
}
