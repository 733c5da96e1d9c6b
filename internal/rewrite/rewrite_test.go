package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/transql/internal/ctegraph"
)

func TestIgnoreNulls(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "first_value",
			input:    "FIRST_VALUE(x) IGNORE NULLS OVER (PARTITION BY y)",
			expected: "FIRST_VALUE(CASE WHEN x IS NOT NULL THEN x END) OVER (PARTITION BY y)",
		},
		{
			name:     "case-insensitive multi-line window",
			input:    "first_value(x) ignore nulls over (partition by y\n  order by z)",
			expected: "first_value(CASE WHEN x IS NOT NULL THEN x END) OVER (partition by y\n  order by z)",
		},
		{
			name:     "modifier split across lines",
			input:    "LAST_VALUE(amount)\nIGNORE NULLS\nOVER (\n  PARTITION BY id\n)",
			expected: "LAST_VALUE(CASE WHEN amount IS NOT NULL THEN amount END) OVER (\n  PARTITION BY id\n)",
		},
		{
			name:     "nested parentheses",
			input:    "FIRST_VALUE(coalesce(a, b)) IGNORE NULLS OVER (PARTITION BY f(c))",
			expected: "FIRST_VALUE(CASE WHEN coalesce(a, b) IS NOT NULL THEN coalesce(a, b) END) OVER (PARTITION BY f(c))",
		},
		{
			name:     "other window function keeps extra arguments",
			input:    "LAG(price, 1) IGNORE NULLS OVER (ORDER BY ts)",
			expected: "LAG(CASE WHEN price IS NOT NULL THEN price END, 1) OVER (ORDER BY ts)",
		},
		{
			name:     "respect nulls dropped",
			input:    "LAG(x) RESPECT NULLS OVER (ORDER BY ts)",
			expected: "LAG(x) OVER (ORDER BY ts)",
		},
		{
			name:     "inside string literal",
			input:    "SELECT 'FIRST_VALUE(x) IGNORE NULLS OVER (y)' AS s",
			expected: "SELECT 'FIRST_VALUE(x) IGNORE NULLS OVER (y)' AS s",
		},
		{
			name:     "no modifier",
			input:    "SELECT FIRST_VALUE(x) OVER (PARTITION BY y) FROM t",
			expected: "SELECT FIRST_VALUE(x) OVER (PARTITION BY y) FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IgnoreNulls(tt.input))
		})
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"literal chain", "'a' + col + 'b'", "concat('a', col, 'b')"},
		{"plus inside literal", "SELECT 'x + y' + col FROM t", "SELECT concat('x + y', col) FROM t"},
		{"dotted identifiers", "t.first_name + ' ' + t.last_name", "concat(t.first_name, ' ', t.last_name)"},
		{"escaped quote kept", "'it''s' + name", "concat('it''s', name)"},
		{"backtick identifier", "`Order Date` + 'x'", "concat(`Order Date`, 'x')"},
		{"function operand", "coalesce(a, '') + 'x'", "concat(coalesce(a, ''), 'x')"},
		{"nested group", "('a' + b) + 'c'", "concat((concat('a', b)), 'c')"},
		{"alias after chain", "SELECT 'id-' + id AS label", "SELECT concat('id-', id) AS label"},
		{"numeric addition", "SELECT a + b FROM t", "SELECT a + b FROM t"},
		{"single literal", "SELECT 'a' FROM t", "SELECT 'a' FROM t"},
		{"tighter operator after", "'a' + b * 2", "'a' + b * 2"},
		{"tighter operator before", "2 * b + 'a'", "2 * b + 'a'"},
		{"typed literal", "DATE '2024-01-01' + x", "DATE '2024-01-01' + x"},
		{"identifiers only", "SELECT first_name + last_name FROM t", "SELECT first_name + last_name FROM t"},
		{"trailing number", "'a' + b + 1", "'a' + b + 1"},
		{"line comment", "SELECT a -- 'x' + b\nFROM t", "SELECT a -- 'x' + b\nFROM t"},
		{"block comment", "/* 'x' + b */ SELECT 'y' + c", "/* 'x' + b */ SELECT concat('y', c)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Concat(tt.input))
		})
	}
}

func TestConcatIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare identifiers", "SELECT first_name + last_name AS whole_name FROM t", "SELECT concat(first_name, last_name) AS whole_name FROM t"},
		{"dotted identifiers", "t.a + u.b", "concat(t.a, u.b)"},
		{"literal chain", "a + ' ' + b", "concat(a, ' ', b)"},
		{"number operand", "SELECT price + 1 FROM t", "SELECT price + 1 FROM t"},
		{"trailing number", "SELECT a + b + 1 FROM t", "SELECT a + b + 1 FROM t"},
		{"call operand", "SELECT coalesce(a, b) + c FROM t", "SELECT coalesce(a, b) + c FROM t"},
		{"tighter operator", "SELECT a + b * 2 FROM t", "SELECT a + b * 2 FROM t"},
		{"inside comment", "-- a + b\nSELECT 1", "-- a + b\nSELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConcatIdentifiers(tt.input))
		})
	}
}

func TestNewRules(t *testing.T) {
	sql := "SELECT a + b FROM t"
	apply := func(rules []Rule) string {
		out := sql
		for _, r := range rules {
			out = r.Rewrite(out, ctegraph.NewNamer())
		}
		return out
	}

	assert.Equal(t, sql, apply(NewRules(Options{})))
	assert.Equal(t, "SELECT concat(a, b) FROM t", apply(NewRules(Options{ConcatIdentifiers: true})))
	assert.Len(t, NewRules(Options{}), len(Rules))
}

func TestRewrites_SkipComments(t *testing.T) {
	sql := "-- regexp_substr(x, 'p', 2)\n/* FIRST_VALUE(a) IGNORE NULLS OVER (ORDER BY b) */\nSELECT 1"
	assert.Equal(t, sql, RegexpSubstr(sql, ctegraph.NewNamer()))
	assert.Equal(t, sql, IgnoreNulls(sql))
	assert.Equal(t, sql, RegexpCount(sql))
	assert.Equal(t, sql, Apply(sql, ctegraph.NewNamer()))
}

func TestRegexpSubstr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"position decremented", "regexp_substr(x, 'p', 3)", "regexp_extract(x, 'p', 2)"},
		{"default position", "regexp_substr(x, 'p')", "regexp_extract(x, 'p', 0)"},
		{"occurrence dropped", "regexp_substr(x, 'p', 2, 1)", "regexp_extract(x, 'p', 1)"},
		{"expression position", "REGEXP_SUBSTR(x, 'p', start_pos)", "regexp_extract(x, 'p', (start_pos) - 1)"},
		{"nested call", "regexp_substr(regexp_substr(x, 'a', 2), 'b')", "regexp_extract(regexp_extract(x, 'a', 1), 'b', 0)"},
		{"comma in pattern", "regexp_substr(x, '[a,b]', 1)", "regexp_extract(x, '[a,b]', 0)"},
		{"inside literal", "SELECT 'regexp_substr(x, p)'", "SELECT 'regexp_substr(x, p)'"},
		{"too few arguments", "regexp_substr(x)", "regexp_substr(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RegexpSubstr(tt.input, ctegraph.NewNamer()))
		})
	}
}

func TestRegexpSubstr_LookBehind(t *testing.T) {
	namer := ctegraph.NewNamer("cte_alias_1")

	got := RegexpSubstr(`regexp_substr(s, '(?<=\()[^)]+')`, namer)
	assert.Equal(t, `(WITH cte_alias_2 AS (SELECT regexp_extract(s, '\([^)]+', 0) as match) SELECT match FROM cte_alias_2)`, got)

	got = RegexpSubstr(`regexp_substr(s, '(?<=id=)\d+', 2)`, namer)
	assert.Equal(t, `(WITH cte_alias_3 AS (SELECT regexp_extract(s, 'id=)\d+', 1) as match) SELECT match FROM cte_alias_3)`, got)
}

func TestRegexpInstr(t *testing.T) {
	assert.Equal(t,
		"SELECT (WITH regexp_match AS (SELECT regexp_extract(col, '[0-9]+', 0) as match) "+
			"SELECT CASE WHEN match IS NOT NULL THEN length(match) ELSE 0 END FROM regexp_match) AS pos",
		RegexpInstr("SELECT regexp_instr(col, '[0-9]+') AS pos"))

	assert.Equal(t, "regexp_instr(col)", RegexpInstr("regexp_instr(col)"))
}

func TestRegexpCount(t *testing.T) {
	assert.Equal(t,
		"(WITH regexp_matches AS (SELECT regexp_extract_all(col, 'a') as matches) SELECT size(matches) FROM regexp_matches)",
		RegexpCount("regexp_count(col, 'a', 1)"))
}

func TestApply(t *testing.T) {
	plain := "SELECT\n  a,\n  b\nFROM t\n"
	assert.Equal(t, plain, Apply(plain, ctegraph.NewNamer()))

	got := Apply("SELECT FIRST_VALUE('x' + name) IGNORE NULLS OVER (ORDER BY id), regexp_substr(name, 'a+', 2) FROM t",
		ctegraph.NewNamer())
	assert.Equal(t,
		"SELECT FIRST_VALUE(CASE WHEN concat('x', name) IS NOT NULL THEN concat('x', name) END) OVER (ORDER BY id), "+
			"regexp_extract(name, 'a+', 1) FROM t",
		got)
}
