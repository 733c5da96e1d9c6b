package parser

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

// Statement parsing.
//
// Grammar:
//
//	statement    → select_stmt | create_as
//	create_as    → CREATE [OR REPLACE] (TABLE|VIEW) table_name AS select_stmt
//	select_stmt  → [with_clause] select_body
//	with_clause  → WITH [RECURSIVE] cte ("," cte)*
//	cte          → identifier ["(" identifier ("," identifier)* ")"] AS "(" select_stmt ")"

func (p *Parser) parseStatement() core.Stmt {
	switch {
	case p.token.Is("CREATE"):
		return p.parseCreateAs()
	case p.check(token.SELECT), p.check(token.WITH):
		return p.parseSelectStmt()
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "SELECT, WITH or CREATE"))
	return nil
}

func (p *Parser) parseCreateAs() core.Stmt {
	p.nextToken() // consume CREATE

	stmt := &core.CreateAs{}
	if p.match(token.OR) {
		if !p.expectWord("REPLACE") {
			return nil
		}
		stmt.OrReplace = true
	}

	switch {
	case p.matchWord("TABLE"):
		stmt.Object = "TABLE"
	case p.matchWord("VIEW"):
		stmt.Object = "VIEW"
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "TABLE or VIEW"))
		return nil
	}

	stmt.Name = p.parseTableName()
	if p.failed() || !p.expect(token.AS) {
		return nil
	}
	stmt.Query = p.parseSelectStmt()
	return stmt
}

// parseSelectStmt parses a SELECT statement with optional WITH clause.
func (p *Parser) parseSelectStmt() *core.SelectStmt {
	stmt := &core.SelectStmt{}

	if p.check(token.WITH) {
		stmt.With = p.parseWithClause()
		if p.failed() {
			return nil
		}
	}

	stmt.Body = p.parseSelectBody()
	if p.failed() {
		return nil
	}
	return stmt
}

// parseWithClause parses WITH [RECURSIVE] cte_list.
func (p *Parser) parseWithClause() *core.WithClause {
	p.nextToken() // consume WITH

	with := &core.WithClause{}
	if p.match(token.RECURSIVE) {
		with.Recursive = true
	}

	for {
		cte := p.parseCTE()
		if p.failed() {
			return nil
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(token.COMMA) {
			break
		}
	}
	return with
}

// parseCTE parses: name [(column_list)] AS (select_stmt)
func (p *Parser) parseCTE() *core.CTE {
	name := p.expectIdent()
	if p.failed() {
		return nil
	}

	var columns []string
	if p.check(token.LPAREN) {
		columns = p.parseIdentList()
	}
	if p.failed() || !p.expect(token.AS) || !p.expect(token.LPAREN) {
		return nil
	}

	sel := p.parseSelectStmt()
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return &core.CTE{Name: name, Columns: columns, Select: sel}
}

// parseIdentList parses: "(" ident {"," ident} ")"
func (p *Parser) parseIdentList() []string {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var idents []string
	for {
		idents = append(idents, p.expectIdent())
		if p.failed() || !p.match(token.COMMA) {
			break
		}
	}
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return idents
}

// parseSelectBody parses select_core [set_op select_body].
func (p *Parser) parseSelectBody() *core.SelectBody {
	body := &core.SelectBody{Left: p.parseSelectCore()}
	if p.failed() {
		return nil
	}

	switch {
	case p.check(token.UNION):
		body.Op = core.SetOpUnion
	case p.check(token.INTERSECT):
		body.Op = core.SetOpIntersect
	case p.check(token.EXCEPT):
		body.Op = core.SetOpExcept
	case p.dialect.MinusIsExcept && p.token.Is("MINUS"):
		body.Op = core.SetOpExcept
	default:
		return body
	}
	p.nextToken()

	if p.match(token.ALL) {
		body.All = true
	} else {
		p.match(token.DISTINCT)
	}

	body.Right = p.parseSelectBody()
	if p.failed() {
		return nil
	}
	return body
}

// parseSelectCore parses one SELECT block.
func (p *Parser) parseSelectCore() *core.SelectCore {
	if !p.expect(token.SELECT) {
		return nil
	}

	sel := &core.SelectCore{}
	if p.match(token.DISTINCT) {
		sel.Distinct = true
	} else {
		p.match(token.ALL)
	}

	if p.token.Is("TOP") && (p.peek.Type == token.NUMBER || p.peek.Type == token.LPAREN) {
		if !p.dialect.SupportsTop {
			p.addError(fmt.Sprintf(ErrUnsupported, "TOP", p.dialect.Name))
			return nil
		}
		p.nextToken()
		sel.Limit = p.parsePrimary()
	}

	sel.Columns = p.parseSelectList()
	if p.failed() {
		return nil
	}

	if p.match(token.FROM) {
		sel.From = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		sel.Where = p.parseExpression()
	}
	if p.check(token.GROUP) {
		p.nextToken()
		if p.expect(token.BY) {
			sel.GroupBy = p.parseExpressionList()
		}
	}
	if p.match(token.HAVING) {
		sel.Having = p.parseExpression()
	}
	if p.check(token.QUALIFY) {
		if !p.dialect.SupportsQualify {
			p.addError(fmt.Sprintf(ErrUnsupported, "QUALIFY", p.dialect.Name))
			return nil
		}
		p.nextToken()
		sel.Qualify = p.parseExpression()
	}
	if p.check(token.ORDER) {
		p.nextToken()
		if p.expect(token.BY) {
			sel.OrderBy = p.parseOrderByList()
		}
	}
	if p.match(token.LIMIT) {
		if sel.Limit != nil {
			p.addError("TOP and LIMIT cannot be combined")
			return nil
		}
		sel.Limit = p.parseExpression()
	}
	if p.match(token.OFFSET) {
		sel.Offset = p.parseExpression()
	}

	if p.failed() {
		return nil
	}
	return sel
}

// parseSelectList parses the comma-separated SELECT list.
func (p *Parser) parseSelectList() []*core.SelectItem {
	var items []*core.SelectItem
	for {
		item := p.parseSelectItem()
		if p.failed() {
			return nil
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			return items
		}
	}
}

// parseSelectItem parses: * | table.* | expr [[AS] alias]
func (p *Parser) parseSelectItem() *core.SelectItem {
	if p.match(token.STAR) {
		return &core.SelectItem{Star: true}
	}

	if p.check(token.IDENT) && p.peek.Type == token.DOT && p.peek2.Type == token.STAR {
		table := p.token.Literal
		p.nextToken() // ident
		p.nextToken() // .
		p.nextToken() // *
		return &core.SelectItem{TableStar: table}
	}

	item := &core.SelectItem{Expr: p.parseExpression()}
	if item.Expr == nil && !p.failed() {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "expression"))
	}
	if p.failed() {
		return nil
	}

	switch {
	case p.match(token.AS):
		if p.check(token.STRING) {
			item.Alias = p.token.Literal
			p.nextToken()
		} else {
			item.Alias = p.expectIdent()
		}
	case p.isAliasToken(p.token):
		item.Alias = p.token.Literal
		p.nextToken()
	}
	return item
}

// parseOrderByList parses: order_item ("," order_item)*
func (p *Parser) parseOrderByList() []*core.OrderByItem {
	var items []*core.OrderByItem
	for {
		item := &core.OrderByItem{Expr: p.parseExpression()}
		if p.failed() {
			return nil
		}

		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}

		if p.match(token.NULLS) {
			switch {
			case p.matchWord("FIRST"):
				first := true
				item.NullsFirst = &first
			case p.matchWord("LAST"):
				first := false
				item.NullsFirst = &first
			default:
				p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "FIRST or LAST"))
				return nil
			}
		}

		items = append(items, item)
		if !p.match(token.COMMA) {
			return items
		}
	}
}

// parseExpressionList parses: expr ("," expr)*
func (p *Parser) parseExpressionList() []core.Expr {
	var exprs []core.Expr
	for {
		expr := p.parseExpression()
		if p.failed() {
			return nil
		}
		exprs = append(exprs, expr)
		if !p.match(token.COMMA) {
			return exprs
		}
	}
}
