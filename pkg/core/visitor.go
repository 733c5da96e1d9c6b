package core

import "fmt"

// Walk traverses the tree rooted at node depth-first in source order and
// calls fn for each node, parent before children. If fn returns false the
// children of that node are skipped.
//
// Walk panics on a node kind it does not know, so a new Kind cannot be added
// without extending it.
func Walk(node Node, fn func(Node) bool) {
	if isNil(node) {
		return
	}
	if !fn(node) {
		return
	}
	walkChildren(node, fn)
}

func walkChildren(node Node, fn func(Node) bool) {
	switch n := node.(type) {
	case *SelectStmt:
		Walk(n.With, fn)
		Walk(n.Body, fn)

	case *CreateAs:
		Walk(n.Name, fn)
		Walk(n.Query, fn)

	case *WithClause:
		for _, cte := range n.CTEs {
			Walk(cte, fn)
		}

	case *CTE:
		Walk(n.Select, fn)

	case *SelectBody:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *SelectCore:
		for _, col := range n.Columns {
			Walk(col, fn)
		}
		Walk(n.From, fn)
		Walk(n.Where, fn)
		walkExprs(n.GroupBy, fn)
		Walk(n.Having, fn)
		Walk(n.Qualify, fn)
		walkOrderBy(n.OrderBy, fn)
		Walk(n.Limit, fn)
		Walk(n.Offset, fn)

	case *SelectItem:
		Walk(n.Expr, fn)

	case *FromClause:
		Walk(n.Source, fn)
		for _, join := range n.Joins {
			Walk(join, fn)
		}

	case *Join:
		Walk(n.Right, fn)
		Walk(n.Condition, fn)

	case *DerivedTable:
		Walk(n.Select, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryExpr:
		Walk(n.Expr, fn)

	case *FuncCall:
		walkExprs(n.Args, fn)
		walkOrderBy(n.WithinGroup, fn)
		Walk(n.Filter, fn)
		if n.Window != nil {
			walkExprs(n.Window.PartitionBy, fn)
			walkOrderBy(n.Window.OrderBy, fn)
			if f := n.Window.Frame; f != nil {
				if f.Start != nil {
					Walk(f.Start.Offset, fn)
				}
				if f.End != nil {
					Walk(f.End.Offset, fn)
				}
			}
		}

	case *CaseExpr:
		Walk(n.Operand, fn)
		for _, w := range n.Whens {
			Walk(w.Condition, fn)
			Walk(w.Result, fn)
		}
		Walk(n.Else, fn)

	case *CastExpr:
		Walk(n.Expr, fn)

	case *InExpr:
		Walk(n.Expr, fn)
		walkExprs(n.Values, fn)
		Walk(n.Query, fn)

	case *BetweenExpr:
		Walk(n.Expr, fn)
		Walk(n.Low, fn)
		Walk(n.High, fn)

	case *IsNullExpr:
		Walk(n.Expr, fn)

	case *LikeExpr:
		Walk(n.Expr, fn)
		Walk(n.Pattern, fn)

	case *ParenExpr:
		Walk(n.Expr, fn)

	case *SubqueryExpr:
		Walk(n.Select, fn)

	case *ExistsExpr:
		Walk(n.Select, fn)

	case *TableName, *ColumnRef, *Literal, *StarExpr:
		// leaves

	default:
		panic(fmt.Sprintf("core.Walk: unhandled node kind %s (%T)", node.Kind(), node))
	}
}

func walkExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Walk(e, fn)
	}
}

func walkOrderBy(items []*OrderByItem, fn func(Node) bool) {
	for _, item := range items {
		Walk(item.Expr, fn)
	}
}

// Inspect calls fn for every node under root without descending into nested
// SELECT statements; the nested statements themselves are still reported.
func Inspect(root Node, fn func(Node)) {
	Walk(root, func(n Node) bool {
		fn(n)
		if n == root {
			return true
		}
		return n.Kind() != KindSelectStmt
	})
}

// isNil reports whether node is nil or a typed nil pointer.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *SelectStmt:
		return n == nil
	case *CreateAs:
		return n == nil
	case *WithClause:
		return n == nil
	case *CTE:
		return n == nil
	case *SelectBody:
		return n == nil
	case *SelectCore:
		return n == nil
	case *SelectItem:
		return n == nil
	case *FromClause:
		return n == nil
	case *Join:
		return n == nil
	case *TableName:
		return n == nil
	case *DerivedTable:
		return n == nil
	case *ColumnRef:
		return n == nil
	case *Literal:
		return n == nil
	case *BinaryExpr:
		return n == nil
	case *UnaryExpr:
		return n == nil
	case *FuncCall:
		return n == nil
	case *CaseExpr:
		return n == nil
	case *CastExpr:
		return n == nil
	case *InExpr:
		return n == nil
	case *BetweenExpr:
		return n == nil
	case *IsNullExpr:
		return n == nil
	case *LikeExpr:
		return n == nil
	case *ParenExpr:
		return n == nil
	case *StarExpr:
		return n == nil
	case *SubqueryExpr:
		return n == nil
	case *ExistsExpr:
		return n == nil
	}
	return false
}
