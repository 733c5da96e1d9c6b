package format

import (
	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

func (p *Printer) formatStmt(stmt core.Stmt) {
	switch s := stmt.(type) {
	case *core.SelectStmt:
		p.formatComments(s.Comments)
		p.formatSelectStmt(s)
	case *core.CreateAs:
		p.formatComments(s.Comments)
		p.formatCreateAs(s)
	}
}

func (p *Printer) formatCreateAs(stmt *core.CreateAs) {
	p.keyword("CREATE")
	if stmt.OrReplace {
		p.space()
		p.kw(token.OR)
		p.space()
		p.keyword("REPLACE")
	}
	p.space()
	p.keyword(stmt.Object)
	p.space()
	p.formatTableName(stmt.Name)
	p.space()
	p.kw(token.AS)
	p.writeln()
	p.formatSelectStmt(stmt.Query)
}

func (p *Printer) formatSelectStmt(stmt *core.SelectStmt) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		p.formatWithClause(stmt.With)
	}
	p.formatSelectBody(stmt.Body)
}

func (p *Printer) formatWithClause(with *core.WithClause) {
	p.kw(token.WITH)
	if with.Recursive {
		p.space()
		p.kw(token.RECURSIVE)
	}
	p.writeln()

	p.indent()
	p.formatList(len(with.CTEs), func(i int) {
		cte := with.CTEs[i]
		p.ident(cte.Name)
		if len(cte.Columns) > 0 {
			p.write("(")
			p.formatList(len(cte.Columns), func(j int) { p.ident(cte.Columns[j]) }, ", ", false)
			p.write(")")
		}
		p.space()
		p.kw(token.AS)
		p.write(" (")
		p.writeln()

		p.indent()
		p.formatSelectStmt(cte.Select)
		p.dedent()

		p.write(")")
	}, ",", true)
	p.writeln()
	p.dedent()
}

func (p *Printer) formatSelectBody(body *core.SelectBody) {
	if body == nil {
		return
	}

	p.formatSelectCore(body.Left)

	if body.Op == core.SetOpNone {
		return
	}
	switch body.Op {
	case core.SetOpUnion:
		p.kw(token.UNION)
	case core.SetOpIntersect:
		p.kw(token.INTERSECT)
	case core.SetOpExcept:
		p.kw(token.EXCEPT)
	}
	if body.All {
		p.space()
		p.kw(token.ALL)
	}
	p.writeln()
	p.formatSelectBody(body.Right)
}

func (p *Printer) formatSelectCore(sc *core.SelectCore) {
	if sc == nil {
		return
	}

	p.kw(token.SELECT)
	if sc.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	}
	p.writeln()

	p.indent()
	p.formatList(len(sc.Columns), func(i int) { p.formatSelectItem(sc.Columns[i]) }, ",", true)
	p.writeln()
	p.dedent()

	if sc.From != nil {
		p.kw(token.FROM)
		p.space()
		p.formatFromClause(sc.From)
		p.writeln()
	}

	p.formatExprClause(sc.Where, token.WHERE)
	if len(sc.GroupBy) > 0 {
		p.kw(token.GROUP, token.BY)
		p.writeln()
		p.indent()
		p.formatList(len(sc.GroupBy), func(i int) { p.formatExpr(sc.GroupBy[i]) }, ",", true)
		p.dedent()
		p.writeln()
	}
	p.formatExprClause(sc.Having, token.HAVING)
	p.formatExprClause(sc.Qualify, token.QUALIFY)
	if len(sc.OrderBy) > 0 {
		p.kw(token.ORDER, token.BY)
		p.writeln()
		p.indent()
		p.formatList(len(sc.OrderBy), func(i int) { p.formatOrderByItem(sc.OrderBy[i]) }, ",", true)
		p.dedent()
		p.writeln()
	}
	if sc.Limit != nil {
		p.kw(token.LIMIT)
		p.space()
		p.formatExpr(sc.Limit)
		p.writeln()
	}
	if sc.Offset != nil {
		p.kw(token.OFFSET)
		p.space()
		p.formatExpr(sc.Offset)
		p.writeln()
	}
}

// formatExprClause prints a keyword on its own line followed by an indented
// expression, when expr is set.
func (p *Printer) formatExprClause(expr core.Expr, kw token.TokenType) {
	if expr == nil {
		return
	}
	p.kw(kw)
	p.writeln()
	p.indent()
	p.formatExpr(expr)
	p.dedent()
	p.writeln()
}

func (p *Printer) formatSelectItem(item *core.SelectItem) {
	if item.Star {
		p.write("*")
		return
	}
	if item.TableStar != "" {
		p.ident(item.TableStar)
		p.write(".*")
		return
	}

	p.formatExpr(item.Expr)
	if item.Alias != "" {
		p.space()
		p.kw(token.AS)
		p.space()
		p.ident(item.Alias)
	}
}

func (p *Printer) formatFromClause(from *core.FromClause) {
	p.formatTableRef(from.Source)
	for _, join := range from.Joins {
		p.writeln()
		p.formatJoin(join)
	}
}

func (p *Printer) formatTableRef(ref core.TableRef) {
	switch t := ref.(type) {
	case *core.TableName:
		p.formatTableName(t)
	case *core.DerivedTable:
		p.write("(")
		p.writeln()
		p.indent()
		p.formatSelectStmt(t.Select)
		p.dedent()
		p.write(")")
		if t.Alias != "" {
			p.space()
			p.ident(t.Alias)
		}
	}
}

func (p *Printer) formatTableName(t *core.TableName) {
	if t.Catalog != "" {
		p.ident(t.Catalog)
		p.write(".")
	}
	if t.Schema != "" {
		p.ident(t.Schema)
		p.write(".")
	}
	p.ident(t.Name)
	if t.Alias != "" {
		p.space()
		p.ident(t.Alias)
	}
}

func (p *Printer) formatJoin(join *core.Join) {
	if join.Type == core.JoinComma {
		p.write(", ")
		p.formatTableRef(join.Right)
		return
	}

	if join.Natural {
		p.keyword("NATURAL")
		p.space()
	}
	if join.Type == core.JoinInner {
		p.kw(token.JOIN)
	} else {
		p.keyword(string(join.Type))
		p.space()
		p.kw(token.JOIN)
	}
	p.space()
	p.formatTableRef(join.Right)

	if len(join.Using) > 0 {
		p.space()
		p.kw(token.USING)
		p.write(" (")
		p.formatList(len(join.Using), func(i int) { p.ident(join.Using[i]) }, ", ", false)
		p.write(")")
	}
	if join.Condition != nil {
		p.space()
		p.kw(token.ON)
		p.space()
		p.formatExpr(join.Condition)
	}
}

func (p *Printer) formatOrderByItem(item *core.OrderByItem) {
	p.formatExpr(item.Expr)
	if item.Desc {
		p.space()
		p.kw(token.DESC)
	}
	if item.NullsFirst != nil {
		p.space()
		p.kw(token.NULLS)
		p.space()
		if *item.NullsFirst {
			p.keyword("FIRST")
		} else {
			p.keyword("LAST")
		}
	}
}
