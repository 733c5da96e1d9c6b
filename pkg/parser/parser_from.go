package parser

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

// FROM clause parsing.
//
// Grammar:
//
//	from_clause → table_ref (join_clause)*
//	table_ref   → table_name [AS alias] | "(" select_stmt ")" [AS] alias
//	join_clause → "," table_ref
//	            | [NATURAL] [INNER | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS] JOIN table_ref
//	              [ON expr | USING "(" ident_list ")"]

func (p *Parser) parseFromClause() *core.FromClause {
	from := &core.FromClause{Source: p.parseTableRef()}
	if p.failed() {
		return nil
	}

	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}
	if p.failed() {
		return nil
	}
	return from
}

// parseJoin returns nil when the current token does not start a join.
func (p *Parser) parseJoin() *core.Join {
	if p.match(token.COMMA) {
		j := &core.Join{Type: core.JoinComma, Right: p.parseTableRef()}
		if p.failed() {
			return nil
		}
		return j
	}

	join := &core.Join{Type: core.JoinInner}
	if p.match(token.NATURAL) {
		join.Natural = true
	}

	switch p.token.Type {
	case token.JOIN:
	case token.INNER:
		p.nextToken()
	case token.LEFT:
		join.Type = core.JoinLeft
		p.nextToken()
		p.match(token.OUTER)
	case token.RIGHT:
		join.Type = core.JoinRight
		p.nextToken()
		p.match(token.OUTER)
	case token.FULL:
		join.Type = core.JoinFull
		p.nextToken()
		p.match(token.OUTER)
	case token.CROSS:
		join.Type = core.JoinCross
		p.nextToken()
	default:
		if join.Natural {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "JOIN"))
		}
		return nil
	}

	if !p.expect(token.JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()
	if p.failed() {
		return nil
	}

	switch {
	case p.match(token.ON):
		join.Condition = p.parseExpression()
	case p.match(token.USING):
		join.Using = p.parseIdentList()
	}

	if p.failed() {
		return nil
	}
	return join
}

func (p *Parser) parseTableRef() core.TableRef {
	if p.match(token.LPAREN) {
		if !p.check(token.SELECT) && !p.check(token.WITH) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "subquery"))
			return nil
		}
		dt := &core.DerivedTable{Select: p.parseSelectStmt()}
		if p.failed() || !p.expect(token.RPAREN) {
			return nil
		}
		dt.Alias = p.parseTableAlias()
		return dt
	}

	tn := p.parseTableName()
	if p.failed() {
		return nil
	}
	tn.Alias = p.parseTableAlias()
	return tn
}

// parseTableName parses [catalog.][schema.]name.
func (p *Parser) parseTableName() *core.TableName {
	parts := []string{p.expectIdent()}
	for !p.failed() && p.match(token.DOT) {
		parts = append(parts, p.expectIdent())
	}
	if p.failed() {
		return nil
	}

	tn := &core.TableName{}
	switch len(parts) {
	case 1:
		tn.Name = parts[0]
	case 2:
		tn.Schema, tn.Name = parts[0], parts[1]
	case 3:
		tn.Catalog, tn.Schema, tn.Name = parts[0], parts[1], parts[2]
	default:
		p.addError(fmt.Sprintf("table name has too many parts: %d", len(parts)))
		return nil
	}
	return tn
}

func (p *Parser) parseTableAlias() string {
	if p.match(token.AS) {
		return p.expectIdent()
	}
	if p.isAliasToken(p.token) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}
