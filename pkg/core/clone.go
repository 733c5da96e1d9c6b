package core

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/token"
)

// CloneExpr returns a deep copy of e. Subqueries inside e are copied too.
func CloneExpr(e Expr) Expr {
	if isNil(e) {
		return nil
	}
	switch n := e.(type) {
	case *ColumnRef:
		c := *n
		return &c
	case *Literal:
		c := *n
		return &c
	case *StarExpr:
		c := *n
		return &c
	case *BinaryExpr:
		return &BinaryExpr{Left: CloneExpr(n.Left), Op: n.Op, Right: CloneExpr(n.Right)}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Expr: CloneExpr(n.Expr)}
	case *FuncCall:
		return &FuncCall{
			Name:          n.Name,
			Distinct:      n.Distinct,
			Star:          n.Star,
			Args:          cloneExprs(n.Args),
			NullTreatment: n.NullTreatment,
			WithinGroup:   cloneOrderBy(n.WithinGroup),
			Filter:        CloneExpr(n.Filter),
			Window:        cloneWindow(n.Window),
		}
	case *CaseExpr:
		c := &CaseExpr{Operand: CloneExpr(n.Operand), Else: CloneExpr(n.Else)}
		for _, w := range n.Whens {
			c.Whens = append(c.Whens, &WhenClause{Condition: CloneExpr(w.Condition), Result: CloneExpr(w.Result)})
		}
		return c
	case *CastExpr:
		t := *n.Type
		t.Params = append([]string(nil), n.Type.Params...)
		return &CastExpr{Expr: CloneExpr(n.Expr), Type: &t}
	case *InExpr:
		return &InExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Values: cloneExprs(n.Values), Query: CloneSelectStmt(n.Query)}
	case *BetweenExpr:
		return &BetweenExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Low: CloneExpr(n.Low), High: CloneExpr(n.High)}
	case *IsNullExpr:
		return &IsNullExpr{Expr: CloneExpr(n.Expr), Not: n.Not}
	case *LikeExpr:
		return &LikeExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Op: n.Op, Pattern: CloneExpr(n.Pattern)}
	case *ParenExpr:
		return &ParenExpr{Expr: CloneExpr(n.Expr)}
	case *SubqueryExpr:
		return &SubqueryExpr{Select: CloneSelectStmt(n.Select)}
	case *ExistsExpr:
		return &ExistsExpr{Not: n.Not, Select: CloneSelectStmt(n.Select)}
	}
	panic(fmt.Sprintf("core.CloneExpr: unhandled node kind %s", e.Kind()))
}

// CloneSelectStmt returns a deep copy of s.
func CloneSelectStmt(s *SelectStmt) *SelectStmt {
	if s == nil {
		return nil
	}
	c := &SelectStmt{Body: cloneBody(s.Body), Comments: append([]*token.Comment(nil), s.Comments...)}
	if s.With != nil {
		c.With = &WithClause{Recursive: s.With.Recursive}
		for _, cte := range s.With.CTEs {
			c.With.CTEs = append(c.With.CTEs, &CTE{
				Name:    cte.Name,
				Columns: append([]string(nil), cte.Columns...),
				Select:  CloneSelectStmt(cte.Select),
			})
		}
	}
	return c
}

func cloneBody(b *SelectBody) *SelectBody {
	if b == nil {
		return nil
	}
	return &SelectBody{Left: CloneSelectCore(b.Left), Op: b.Op, All: b.All, Right: cloneBody(b.Right)}
}

// CloneSelectCore returns a deep copy of c.
func CloneSelectCore(c *SelectCore) *SelectCore {
	if c == nil {
		return nil
	}
	out := &SelectCore{
		Distinct: c.Distinct,
		From:     cloneFrom(c.From),
		Where:    CloneExpr(c.Where),
		GroupBy:  cloneExprs(c.GroupBy),
		Having:   CloneExpr(c.Having),
		Qualify:  CloneExpr(c.Qualify),
		OrderBy:  cloneOrderBy(c.OrderBy),
		Limit:    CloneExpr(c.Limit),
		Offset:   CloneExpr(c.Offset),
	}
	for _, item := range c.Columns {
		out.Columns = append(out.Columns, &SelectItem{
			Star:      item.Star,
			TableStar: item.TableStar,
			Expr:      CloneExpr(item.Expr),
			Alias:     item.Alias,
		})
	}
	return out
}

func cloneFrom(f *FromClause) *FromClause {
	if f == nil {
		return nil
	}
	out := &FromClause{Source: cloneTableRef(f.Source)}
	for _, j := range f.Joins {
		out.Joins = append(out.Joins, &Join{
			Type:      j.Type,
			Natural:   j.Natural,
			Right:     cloneTableRef(j.Right),
			Condition: CloneExpr(j.Condition),
			Using:     append([]string(nil), j.Using...),
		})
	}
	return out
}

func cloneTableRef(t TableRef) TableRef {
	switch n := t.(type) {
	case *TableName:
		c := *n
		return &c
	case *DerivedTable:
		return &DerivedTable{Select: CloneSelectStmt(n.Select), Alias: n.Alias}
	}
	return nil
}

func cloneExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = CloneExpr(e)
	}
	return out
}

func cloneOrderBy(items []*OrderByItem) []*OrderByItem {
	if items == nil {
		return nil
	}
	out := make([]*OrderByItem, len(items))
	for i, item := range items {
		c := *item
		c.Expr = CloneExpr(item.Expr)
		out[i] = &c
	}
	return out
}

func cloneWindow(w *WindowSpec) *WindowSpec {
	if w == nil {
		return nil
	}
	out := &WindowSpec{PartitionBy: cloneExprs(w.PartitionBy), OrderBy: cloneOrderBy(w.OrderBy)}
	if w.Frame != nil {
		out.Frame = &FrameSpec{Type: w.Frame.Type, Start: cloneBound(w.Frame.Start), End: cloneBound(w.Frame.End)}
	}
	return out
}

func cloneBound(b *FrameBound) *FrameBound {
	if b == nil {
		return nil
	}
	return &FrameBound{Type: b.Type, Offset: CloneExpr(b.Offset)}
}
