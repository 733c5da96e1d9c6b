package core

import "fmt"

// Transform rewrites e bottom-up: children are transformed first, then fn is
// called on the node and its result replaces the node. Nodes are modified in
// place, so callers that must keep the original should pass a CloneExpr copy.
//
// Nested SELECT statements (scalar, IN and EXISTS subqueries) have their own
// scope and are left untouched.
func Transform(e Expr, fn func(Expr) Expr) Expr {
	if isNil(e) {
		return e
	}
	switch n := e.(type) {
	case *ColumnRef, *Literal, *StarExpr, *SubqueryExpr, *ExistsExpr:
	case *BinaryExpr:
		n.Left = Transform(n.Left, fn)
		n.Right = Transform(n.Right, fn)
	case *UnaryExpr:
		n.Expr = Transform(n.Expr, fn)
	case *FuncCall:
		transformExprs(n.Args, fn)
		transformOrderBy(n.WithinGroup, fn)
		n.Filter = Transform(n.Filter, fn)
		if n.Window != nil {
			transformExprs(n.Window.PartitionBy, fn)
			transformOrderBy(n.Window.OrderBy, fn)
			if f := n.Window.Frame; f != nil {
				for _, b := range []*FrameBound{f.Start, f.End} {
					if b != nil {
						b.Offset = Transform(b.Offset, fn)
					}
				}
			}
		}
	case *CaseExpr:
		n.Operand = Transform(n.Operand, fn)
		for _, w := range n.Whens {
			w.Condition = Transform(w.Condition, fn)
			w.Result = Transform(w.Result, fn)
		}
		n.Else = Transform(n.Else, fn)
	case *CastExpr:
		n.Expr = Transform(n.Expr, fn)
	case *InExpr:
		n.Expr = Transform(n.Expr, fn)
		transformExprs(n.Values, fn)
	case *BetweenExpr:
		n.Expr = Transform(n.Expr, fn)
		n.Low = Transform(n.Low, fn)
		n.High = Transform(n.High, fn)
	case *IsNullExpr:
		n.Expr = Transform(n.Expr, fn)
	case *LikeExpr:
		n.Expr = Transform(n.Expr, fn)
		n.Pattern = Transform(n.Pattern, fn)
	case *ParenExpr:
		n.Expr = Transform(n.Expr, fn)
	default:
		panic(fmt.Sprintf("core.Transform: unhandled node kind %s", e.Kind()))
	}
	return fn(e)
}

func transformExprs(exprs []Expr, fn func(Expr) Expr) {
	for i := range exprs {
		exprs[i] = Transform(exprs[i], fn)
	}
}

func transformOrderBy(items []*OrderByItem, fn func(Expr) Expr) {
	for _, item := range items {
		item.Expr = Transform(item.Expr, fn)
	}
}
