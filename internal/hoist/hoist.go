// Package hoist moves select clauses that reuse their own column aliases into
// synthetic CTEs.
//
// Redshift lets a select clause refer to an alias it defines in a later
// select item or in WHERE, GROUP BY, HAVING and QUALIFY. Databricks resolves
// those names against the FROM clause instead. A clause that does this is
// wrapped into a generated CTE, with the alias references expanded to the
// expressions they stand for, and replaced by a wildcard select over it.
package hoist

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/transql/internal/ctegraph"
	"github.com/leapstack-labs/transql/pkg/core"
)

// Namer mints names for synthetic CTEs.
type Namer interface {
	Next() string
}

// Hoist returns sc unchanged when none of its aliases is reused within the
// clause. Otherwise it registers a synthetic node wrapping sc in g and
// returns the wildcard select that replaces sc.
//
// A clause ordered by keys that are not among its output columns cannot be
// ordered from the outside, so its alias references are expanded in place
// and sc itself is returned.
//
// Hoist does not descend into nested selects; Apply drives it over a whole
// query.
func Hoist(sc *core.SelectCore, g *ctegraph.Graph, namer Namer) (*core.SelectCore, error) {
	if sc == nil || !reusesAlias(sc) {
		return sc, nil
	}
	if len(sc.OrderBy) > 0 && !canLiftOrdering(sc) {
		expandAliases(sc)
		return sc, nil
	}

	name := namer.Next()
	aliases := expandAliases(sc)

	outer := &core.SelectCore{
		Columns: []*core.SelectItem{{Star: true}},
		From:    &core.FromClause{Source: &core.TableName{Name: name}},
	}
	outer.OrderBy, outer.Limit, outer.Offset = sc.OrderBy, sc.Limit, sc.Offset
	sc.OrderBy, sc.Limit, sc.Offset = nil, nil, nil

	node := &ctegraph.CTENode{
		Name:      name,
		Subtree:   &core.SelectStmt{Body: &core.SelectBody{Left: sc}},
		Aliases:   aliases,
		Synthetic: true,
	}
	if err := g.Add(node); err != nil {
		return nil, err
	}
	return outer, nil
}

// Inline expands references to aliases of sc in place, without hoisting,
// and reports whether there were any.
func Inline(sc *core.SelectCore) bool {
	if sc == nil || !reusesAlias(sc) {
		return false
	}
	expandAliases(sc)
	return true
}

// aliasDef is one alias defined by a select item.
type aliasDef struct {
	index int
	expr  core.Expr
}

// definedAliases maps lower-cased alias names to their first definition.
// Aliases that merely rename a column to itself are left out: referring to
// them is the same as referring to the column.
func definedAliases(sc *core.SelectCore) map[string]aliasDef {
	defs := make(map[string]aliasDef)
	for i, item := range sc.Columns {
		if item.Alias == "" || item.Expr == nil {
			continue
		}
		if col, ok := item.Expr.(*core.ColumnRef); ok && strings.EqualFold(col.Column, item.Alias) {
			continue
		}
		k := strings.ToLower(item.Alias)
		if _, exists := defs[k]; !exists {
			defs[k] = aliasDef{index: i, expr: item.Expr}
		}
	}
	return defs
}

// reusesAlias reports whether an unqualified column reference in sc names
// an alias of sc: in a later select item, or in WHERE, GROUP BY, HAVING or
// QUALIFY. ORDER BY may name output columns and is not checked.
func reusesAlias(sc *core.SelectCore) bool {
	defs := definedAliases(sc)
	if len(defs) == 0 {
		return false
	}

	for i, item := range sc.Columns {
		found := false
		eachColumnRef(item.Expr, func(name string) {
			if def, ok := defs[name]; ok && def.index < i {
				found = true
			}
		})
		if found {
			return true
		}
	}

	clauses := append([]core.Expr{sc.Where, sc.Having, sc.Qualify}, sc.GroupBy...)
	for _, expr := range clauses {
		found := false
		eachColumnRef(expr, func(name string) {
			if _, ok := defs[name]; ok {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// eachColumnRef calls fn with the lower-cased name of every unqualified
// column reference in e, outside nested selects.
func eachColumnRef(e core.Expr, fn func(string)) {
	if e == nil {
		return
	}
	core.Inspect(e, func(n core.Node) {
		if col, ok := n.(*core.ColumnRef); ok && col.Table == "" {
			fn(strings.ToLower(col.Column))
		}
	})
}

// expandAliases rewrites sc in place so no clause depends on an alias of sc,
// and returns the expanded alias definitions keyed by their declared name.
// Select items only see aliases defined before them; the other clauses see
// them all.
func expandAliases(sc *core.SelectCore) map[string]core.Expr {
	defs := definedAliases(sc)
	visible := make(map[string]core.Expr)
	result := make(map[string]core.Expr)

	for i, item := range sc.Columns {
		if item.Expr == nil {
			continue
		}
		item.Expr = expand(item.Expr, visible)
		if item.Alias == "" {
			continue
		}
		result[item.Alias] = item.Expr
		k := strings.ToLower(item.Alias)
		if def, ok := defs[k]; ok && def.index == i {
			visible[k] = item.Expr
		}
	}

	sc.Where = expand(sc.Where, visible)
	for i, g := range sc.GroupBy {
		sc.GroupBy[i] = expand(g, visible)
	}
	sc.Having = expand(sc.Having, visible)
	sc.Qualify = expand(sc.Qualify, visible)
	return result
}

func expand(e core.Expr, aliases map[string]core.Expr) core.Expr {
	if e == nil || len(aliases) == 0 {
		return e
	}
	return core.Transform(e, func(x core.Expr) core.Expr {
		col, ok := x.(*core.ColumnRef)
		if !ok || col.Table != "" {
			return x
		}
		def, ok := aliases[strings.ToLower(col.Column)]
		if !ok {
			return x
		}
		return parenthesize(core.CloneExpr(def))
	})
}

func parenthesize(e core.Expr) core.Expr {
	switch e.(type) {
	case *core.ColumnRef, *core.Literal, *core.FuncCall, *core.ParenExpr,
		*core.CastExpr, *core.CaseExpr, *core.SubqueryExpr:
		return e
	}
	return &core.ParenExpr{Expr: e}
}

// canLiftOrdering reports whether ORDER BY can move to a wildcard select
// over sc: every key must be an ordinal or the name of an output column.
func canLiftOrdering(sc *core.SelectCore) bool {
	outputs := make(map[string]bool)
	for _, item := range sc.Columns {
		switch {
		case item.Alias != "":
			outputs[strings.ToLower(item.Alias)] = true
		case item.Expr != nil:
			if col, ok := item.Expr.(*core.ColumnRef); ok {
				outputs[strings.ToLower(col.Column)] = true
			}
		}
	}

	for _, item := range sc.OrderBy {
		switch key := item.Expr.(type) {
		case *core.ColumnRef:
			if key.Table != "" || !outputs[strings.ToLower(key.Column)] {
				return false
			}
		case *core.Literal:
			if key.Type != core.LiteralNumber {
				return false
			}
			if _, err := strconv.Atoi(key.Value); err != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}
