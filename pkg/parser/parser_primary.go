package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

// typedLiteralPrefixes are type names that may directly precede a string
// literal: DATE '2024-01-01'.
var typedLiteralPrefixes = map[string]bool{
	"DATE":        true,
	"TIME":        true,
	"TIMESTAMP":   true,
	"TIMESTAMPTZ": true,
	"INTERVAL":    true,
}

// parsePrimary parses primary expressions: literals, column references,
// function calls, CASE, CAST, EXISTS, parenthesized expressions and subqueries.
func (p *Parser) parsePrimary() core.Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := &core.Literal{Type: core.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &core.Literal{Type: core.LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.TRUE, token.FALSE:
		lit := &core.Literal{Type: core.LiteralBool, Value: strings.ToUpper(p.token.Literal)}
		p.nextToken()
		return lit

	case token.NULL:
		p.nextToken()
		return &core.Literal{Type: core.LiteralNull, Value: "NULL"}

	case token.STAR:
		p.nextToken()
		return &core.StarExpr{}

	case token.LPAREN:
		return p.parseParenOrSubquery()

	case token.CASE:
		return p.parseCaseExpr()

	case token.CAST:
		return p.parseCastExpr()

	case token.EXISTS:
		p.nextToken()
		sel := p.parseParenSelect()
		if sel == nil {
			return nil
		}
		return &core.ExistsExpr{Select: sel}

	case token.LEFT, token.RIGHT:
		// left(s, n) and right(s, n) are functions despite being join keywords.
		if p.peek.Type == token.LPAREN {
			name := p.token.Literal
			p.nextToken()
			return p.parseFuncCall(name)
		}

	case token.IDENT:
		return p.parseIdentifierExpr()
	}

	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "expression"))
	return nil
}

// parseIdentifierExpr parses typed literals, function calls and (qualified)
// column references.
func (p *Parser) parseIdentifierExpr() core.Expr {
	first := p.token
	p.nextToken()

	if !first.Quoted && p.check(token.STRING) && typedLiteralPrefixes[strings.ToUpper(first.Literal)] {
		lit := &core.Literal{Type: core.LiteralTyped, Value: p.token.Literal, TypeName: strings.ToUpper(first.Literal)}
		p.nextToken()
		return lit
	}

	if p.check(token.LPAREN) {
		return p.parseFuncCall(first.Literal)
	}

	if !p.check(token.DOT) {
		return &core.ColumnRef{Column: first.Literal}
	}
	p.nextToken() // consume .

	if p.match(token.STAR) {
		return &core.StarExpr{Table: first.Literal}
	}
	second := p.expectIdent()
	if p.failed() {
		return nil
	}

	// schema.table.column keeps the last two parts; the schema is dropped
	// only for column references, which is how Redshift resolves them.
	if p.match(token.DOT) {
		third := p.expectIdent()
		if p.failed() {
			return nil
		}
		return &core.ColumnRef{Table: second, Column: third}
	}
	return &core.ColumnRef{Table: first.Literal, Column: second}
}

// parseFuncCall parses: name "(" [DISTINCT] (* | args) ")" [modifiers]
// where modifiers are IGNORE/RESPECT NULLS, WITHIN GROUP, FILTER and OVER.
func (p *Parser) parseFuncCall(name string) core.Expr {
	p.nextToken() // consume (

	fn := &core.FuncCall{Name: name}

	switch {
	case p.match(token.RPAREN):
		// no arguments
	case p.check(token.STAR):
		p.nextToken()
		fn.Star = true
		if !p.expect(token.RPAREN) {
			return nil
		}
	case strings.EqualFold(name, "EXTRACT") && p.peek.Type == token.FROM:
		part := &core.ColumnRef{Column: p.expectIdent()}
		p.nextToken() // consume FROM
		fn.Args = []core.Expr{part, p.parseExpression()}
		if p.failed() || !p.expect(token.RPAREN) {
			return nil
		}
	default:
		if p.match(token.DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
		if p.failed() || !p.expect(token.RPAREN) {
			return nil
		}
	}

	switch {
	case p.token.Is("IGNORE") && p.peek.Type == token.NULLS:
		p.nextToken()
		p.nextToken()
		fn.NullTreatment = core.IgnoreNulls
	case p.token.Is("RESPECT") && p.peek.Type == token.NULLS:
		p.nextToken()
		p.nextToken()
		fn.NullTreatment = core.RespectNulls
	}

	if p.token.Is("WITHIN") && p.peek.Type == token.GROUP {
		p.nextToken()
		p.nextToken()
		if !p.expect(token.LPAREN) || !p.expect(token.ORDER) || !p.expect(token.BY) {
			return nil
		}
		fn.WithinGroup = p.parseOrderByList()
		if p.failed() || !p.expect(token.RPAREN) {
			return nil
		}
	}

	if p.token.Is("FILTER") && p.peek.Type == token.LPAREN {
		p.nextToken()
		p.nextToken()
		if !p.expect(token.WHERE) {
			return nil
		}
		fn.Filter = p.parseExpression()
		if p.failed() || !p.expect(token.RPAREN) {
			return nil
		}
	}

	if p.match(token.OVER) {
		fn.Window = p.parseWindowSpec()
		if p.failed() {
			return nil
		}
	}

	if fn.NullTreatment != core.NullsDefault && fn.Window == nil {
		p.addError(fmt.Sprintf("%s NULLS requires an OVER clause", nullTreatmentWord(fn.NullTreatment)))
		return nil
	}
	return fn
}

func nullTreatmentWord(nt core.NullTreatment) string {
	if nt == core.IgnoreNulls {
		return "IGNORE"
	}
	return "RESPECT"
}

// parseParenOrSubquery parses "(" expr ")" or "(" select_stmt ")".
func (p *Parser) parseParenOrSubquery() core.Expr {
	if p.peek.Type == token.SELECT || p.peek.Type == token.WITH {
		sel := p.parseParenSelect()
		if sel == nil {
			return nil
		}
		return &core.SubqueryExpr{Select: sel}
	}

	p.nextToken() // consume (
	expr := p.parseExpression()
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return &core.ParenExpr{Expr: expr}
}

// parseParenSelect parses "(" select_stmt ")".
func (p *Parser) parseParenSelect() *core.SelectStmt {
	if !p.expect(token.LPAREN) {
		return nil
	}
	sel := p.parseSelectStmt()
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return sel
}

// parseCaseExpr parses: CASE [operand] (WHEN cond THEN result)+ [ELSE result] END
func (p *Parser) parseCaseExpr() core.Expr {
	p.nextToken() // consume CASE

	expr := &core.CaseExpr{}
	if !p.check(token.WHEN) {
		expr.Operand = p.parseExpression()
	}

	for p.match(token.WHEN) {
		cond := p.parseExpression()
		if p.failed() || !p.expect(token.THEN) {
			return nil
		}
		result := p.parseExpression()
		if p.failed() {
			return nil
		}
		expr.Whens = append(expr.Whens, &core.WhenClause{Condition: cond, Result: result})
	}
	if len(expr.Whens) == 0 {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "WHEN"))
		return nil
	}

	if p.match(token.ELSE) {
		expr.Else = p.parseExpression()
	}
	if p.failed() || !p.expect(token.END) {
		return nil
	}
	return expr
}

// parseCastExpr parses: CAST "(" expr AS type ")"
func (p *Parser) parseCastExpr() core.Expr {
	p.nextToken() // consume CAST
	if !p.expect(token.LPAREN) {
		return nil
	}
	expr := p.parseExpression()
	if p.failed() || !p.expect(token.AS) {
		return nil
	}
	dt := p.parseDataType()
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return &core.CastExpr{Expr: expr, Type: dt}
}
