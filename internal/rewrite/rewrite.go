// Package rewrite converts Redshift function and operator idioms that survive
// rendering into their Databricks equivalents.
//
// The rewrites work on SQL text, so they run on the final rendered query
// only, after every change to the syntax tree. Each rewrite leaves text it
// does not match unchanged and never looks inside comments, string literals
// or quoted identifiers.
package rewrite

// Namer mints names for generated CTEs.
type Namer interface {
	Next() string
}

// Rule is one named text rewrite.
type Rule struct {
	Name    string
	Rewrite func(sql string, namer Namer) string
}

// Options selects variants of the rewrites.
type Options struct {
	// ConcatIdentifiers treats + between bare identifiers as string
	// concatenation even when no operand is a string literal.
	ConcatIdentifiers bool
}

// Rules lists the default rewrites in the order Apply runs them.
var Rules = NewRules(Options{})

// NewRules returns the rewrites configured by opts, in order.
func NewRules(opts Options) []Rule {
	concat := Concat
	if opts.ConcatIdentifiers {
		concat = ConcatIdentifiers
	}
	return []Rule{
		{Name: "ignore_nulls", Rewrite: func(sql string, _ Namer) string { return IgnoreNulls(sql) }},
		{Name: "concat", Rewrite: func(sql string, _ Namer) string { return concat(sql) }},
		{Name: "regexp_substr", Rewrite: RegexpSubstr},
		{Name: "regexp_instr", Rewrite: func(sql string, _ Namer) string { return RegexpInstr(sql) }},
		{Name: "regexp_count", Rewrite: func(sql string, _ Namer) string { return RegexpCount(sql) }},
	}
}

// Apply runs every default rule over sql in order.
func Apply(sql string, namer Namer) string {
	for _, r := range Rules {
		sql = r.Rewrite(sql, namer)
	}
	return sql
}
