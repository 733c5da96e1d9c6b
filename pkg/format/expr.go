package format

import (
	"strings"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

const complexityThreshold = 5

func (p *Printer) formatExpr(e core.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *core.Literal:
		p.formatLiteral(expr)
	case *core.ColumnRef:
		p.formatColumnRef(expr)
	case *core.BinaryExpr:
		p.formatBinaryExpr(expr)
	case *core.UnaryExpr:
		p.formatUnaryExpr(expr)
	case *core.FuncCall:
		p.formatFuncCall(expr)
	case *core.CaseExpr:
		p.formatCaseExpr(expr)
	case *core.CastExpr:
		p.formatCastExpr(expr)
	case *core.InExpr:
		p.formatInExpr(expr)
	case *core.BetweenExpr:
		p.formatBetweenExpr(expr)
	case *core.IsNullExpr:
		p.formatIsNullExpr(expr)
	case *core.LikeExpr:
		p.formatLikeExpr(expr)
	case *core.ParenExpr:
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *core.SubqueryExpr:
		p.formatSubquery(expr.Select)
	case *core.ExistsExpr:
		if expr.Not {
			p.kw(token.NOT)
			p.space()
		}
		p.kw(token.EXISTS)
		p.space()
		p.formatSubquery(expr.Select)
	case *core.StarExpr:
		if expr.Table != "" {
			p.ident(expr.Table)
			p.write(".")
		}
		p.write("*")
	}
}

func (p *Printer) exprComplexity(e core.Expr) int {
	if e == nil {
		return 0
	}

	switch expr := e.(type) {
	case *core.Literal, *core.ColumnRef, *core.StarExpr:
		return 1
	case *core.BinaryExpr:
		return 1 + p.exprComplexity(expr.Left) + p.exprComplexity(expr.Right)
	case *core.UnaryExpr:
		return 1 + p.exprComplexity(expr.Expr)
	case *core.FuncCall:
		score := 2
		for _, arg := range expr.Args {
			score += p.exprComplexity(arg)
		}
		return score
	case *core.ParenExpr:
		return p.exprComplexity(expr.Expr)
	case *core.CaseExpr:
		score := 2
		for _, w := range expr.Whens {
			score += p.exprComplexity(w.Condition) + p.exprComplexity(w.Result)
		}
		return score
	default:
		return 1
	}
}

func isLogicalOp(op token.TokenType) bool {
	return op == token.AND || op == token.OR
}

func (p *Printer) formatLiteral(lit *core.Literal) {
	switch lit.Type {
	case core.LiteralString:
		p.write("'")
		p.write(lit.Value)
		p.write("'")
	case core.LiteralBool:
		if strings.EqualFold(lit.Value, "true") {
			p.kw(token.TRUE)
		} else {
			p.kw(token.FALSE)
		}
	case core.LiteralNull:
		p.kw(token.NULL)
	case core.LiteralTyped:
		p.write(p.dialect.TypeName(lit.TypeName))
		p.write(" '")
		p.write(lit.Value)
		p.write("'")
	default:
		p.write(lit.Value)
	}
}

func (p *Printer) formatColumnRef(col *core.ColumnRef) {
	if col.Table != "" {
		p.ident(col.Table)
		p.write(".")
	}
	p.ident(col.Column)
}

func (p *Printer) formatBinaryExpr(expr *core.BinaryExpr) {
	shouldBreak := p.exprComplexity(expr) > complexityThreshold && isLogicalOp(expr.Op)

	p.formatExpr(expr.Left)

	if shouldBreak {
		p.writeln()
		p.kw(expr.Op)
		p.space()
	} else {
		p.space()
		p.kw(expr.Op)
		p.space()
	}

	p.formatExpr(expr.Right)
}

func (p *Printer) formatUnaryExpr(expr *core.UnaryExpr) {
	p.kw(expr.Op)
	// "- -1" must not collapse into a -- comment.
	if expr.Op == token.NOT || (expr.Op == token.MINUS && startsWithMinus(expr.Expr)) {
		p.space()
	}
	p.formatExpr(expr.Expr)
}

func startsWithMinus(e core.Expr) bool {
	switch n := e.(type) {
	case *core.UnaryExpr:
		return n.Op == token.MINUS
	case *core.Literal:
		return strings.HasPrefix(n.Value, "-")
	case *core.BinaryExpr:
		return startsWithMinus(n.Left)
	}
	return false
}

func (p *Printer) formatFuncCall(fn *core.FuncCall) {
	p.write(fn.Name)
	p.write("(")

	if fn.Distinct {
		p.kw(token.DISTINCT)
		p.space()
	}

	switch {
	case fn.Star:
		p.write("*")
	case isExtract(fn):
		p.keyword(fn.Args[0].(*core.ColumnRef).Column)
		p.space()
		p.kw(token.FROM)
		p.space()
		p.formatExpr(fn.Args[1])
	default:
		p.formatList(len(fn.Args), func(i int) { p.formatExpr(fn.Args[i]) }, ", ", false)
	}

	p.write(")")

	switch fn.NullTreatment {
	case core.IgnoreNulls:
		p.write(" IGNORE NULLS")
	case core.RespectNulls:
		p.write(" RESPECT NULLS")
	}

	if len(fn.WithinGroup) > 0 {
		p.write(" WITHIN GROUP (")
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatList(len(fn.WithinGroup), func(i int) { p.formatOrderByItem(fn.WithinGroup[i]) }, ", ", false)
		p.write(")")
	}

	if fn.Filter != nil {
		p.write(" FILTER (")
		p.kw(token.WHERE)
		p.space()
		p.formatExpr(fn.Filter)
		p.write(")")
	}

	if fn.Window != nil {
		p.space()
		p.formatWindowSpec(fn.Window)
	}
}

func isExtract(fn *core.FuncCall) bool {
	if !strings.EqualFold(fn.Name, "EXTRACT") || len(fn.Args) != 2 {
		return false
	}
	part, ok := fn.Args[0].(*core.ColumnRef)
	return ok && part.Table == ""
}

func (p *Printer) formatWindowSpec(w *core.WindowSpec) {
	p.kw(token.OVER)
	p.write(" (")

	if len(w.PartitionBy) > 0 {
		p.writeln()
		p.indent()
		p.kw(token.PARTITION, token.BY)
		p.space()
		p.formatList(len(w.PartitionBy), func(i int) { p.formatExpr(w.PartitionBy[i]) }, ", ", false)
		p.dedent()
	}

	if len(w.OrderBy) > 0 {
		p.writeln()
		p.indent()
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatList(len(w.OrderBy), func(i int) { p.formatOrderByItem(w.OrderBy[i]) }, ", ", false)
		p.dedent()
	}

	if w.Frame != nil {
		p.writeln()
		p.indent()
		p.formatFrameSpec(w.Frame)
		p.dedent()
	}

	p.write(")")
}

func (p *Printer) formatFrameSpec(f *core.FrameSpec) {
	p.keyword(f.Type)
	p.space()
	if f.End == nil {
		p.formatFrameBound(f.Start)
		return
	}
	p.kw(token.BETWEEN)
	p.space()
	p.formatFrameBound(f.Start)
	p.space()
	p.kw(token.AND)
	p.space()
	p.formatFrameBound(f.End)
}

func (p *Printer) formatFrameBound(b *core.FrameBound) {
	if b == nil {
		return
	}
	switch b.Type {
	case core.FrameExprPreceding, core.FrameExprFollowing:
		p.formatExpr(b.Offset)
		p.space()
	}
	p.keyword(string(b.Type))
}

func (p *Printer) formatCaseExpr(c *core.CaseExpr) {
	p.kw(token.CASE)

	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}

	p.writeln()
	p.indent()

	for _, w := range c.Whens {
		p.kw(token.WHEN)
		p.space()
		p.formatExpr(w.Condition)
		p.space()
		p.kw(token.THEN)
		p.space()
		p.formatExpr(w.Result)
		p.writeln()
	}

	if c.Else != nil {
		p.kw(token.ELSE)
		p.space()
		p.formatExpr(c.Else)
		p.writeln()
	}

	p.dedent()
	p.kw(token.END)
}

func (p *Printer) formatCastExpr(c *core.CastExpr) {
	p.kw(token.CAST)
	p.write("(")
	p.formatExpr(c.Expr)
	p.space()
	p.kw(token.AS)
	p.space()
	p.write(p.dataType(c.Type))
	p.write(")")
}

// dataType spells t in the target dialect. A mapping for the full
// parameterized form (VARCHAR(MAX)) wins over one for the bare name.
func (p *Printer) dataType(t *core.DataType) string {
	name := strings.ToUpper(t.Name)
	if len(t.Params) == 0 {
		return strings.ToUpper(p.dialect.BareTypeName(name))
	}
	params := strings.ToUpper(strings.Join(t.Params, ", "))
	full := name + "(" + params + ")"
	if mapped := p.dialect.TypeName(full); mapped != full {
		return mapped
	}
	return strings.ToUpper(p.dialect.TypeName(name)) + "(" + params + ")"
}

func (p *Printer) formatInExpr(in *core.InExpr) {
	p.formatExpr(in.Expr)
	if in.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(token.IN)
	p.space()

	if in.Query != nil {
		p.formatSubquery(in.Query)
		return
	}
	p.write("(")
	p.formatList(len(in.Values), func(i int) { p.formatExpr(in.Values[i]) }, ", ", false)
	p.write(")")
}

func (p *Printer) formatBetweenExpr(b *core.BetweenExpr) {
	p.formatExpr(b.Expr)
	if b.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(token.BETWEEN)
	p.space()
	p.formatExpr(b.Low)
	p.space()
	p.kw(token.AND)
	p.space()
	p.formatExpr(b.High)
}

func (p *Printer) formatIsNullExpr(is *core.IsNullExpr) {
	p.formatExpr(is.Expr)
	p.space()
	p.kw(token.IS)
	if is.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(token.NULL)
}

func (p *Printer) formatLikeExpr(like *core.LikeExpr) {
	p.formatExpr(like.Expr)
	if like.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(like.Op)
	p.space()
	p.formatExpr(like.Pattern)
}

func (p *Printer) formatSubquery(stmt *core.SelectStmt) {
	p.write("(")
	p.writeln()
	p.indent()
	p.formatSelectStmt(stmt)
	p.dedent()
	p.write(")")
}
