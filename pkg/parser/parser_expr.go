package parser

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	precedenceNone       = 0
//	precedenceOr         = 1
//	precedenceAnd        = 2
//	precedenceNot        = 3
//	precedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE, ILIKE)
//	precedenceAddition   = 5  (+, -, ||)
//	precedenceMultiply   = 6  (*, /, %)
//	precedenceUnary      = 7  (-, +)
//	precedencePostfix    = 8  (::)
const (
	precedenceNone = iota
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceAddition
	precedenceMultiply
	precedenceUnary
	precedencePostfix
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(precedenceNone + 1)
}

func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	left := p.parsePrefixExpr()
	if left == nil || p.failed() {
		return nil
	}

	for {
		prec := p.infixPrecedence()
		if prec < minPrecedence {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil || p.failed() {
			return nil
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() core.Expr {
	switch p.token.Type {
	case token.NOT:
		p.nextToken()
		return &core.UnaryExpr{Op: token.NOT, Expr: p.parseExpressionWithPrecedence(precedenceNot)}
	case token.MINUS:
		p.nextToken()
		return &core.UnaryExpr{Op: token.MINUS, Expr: p.parseExpressionWithPrecedence(precedenceUnary)}
	case token.PLUS:
		p.nextToken()
		return &core.UnaryExpr{Op: token.PLUS, Expr: p.parseExpressionWithPrecedence(precedenceUnary)}
	default:
		return p.parsePrimary()
	}
}

// infixPrecedence returns the precedence of the current token as an infix
// operator, or precedenceNone.
func (p *Parser) infixPrecedence() int {
	switch p.token.Type {
	case token.OR:
		return precedenceOr
	case token.AND:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.IS, token.IN, token.BETWEEN, token.LIKE:
		return precedenceComparison
	case token.ILIKE:
		if p.dialect.SupportsIlike {
			return precedenceComparison
		}
	case token.NOT:
		// NOT IN, NOT LIKE, NOT BETWEEN
		switch p.peek.Type {
		case token.IN, token.LIKE, token.ILIKE, token.BETWEEN:
			return precedenceComparison
		}
	case token.PLUS, token.MINUS, token.DPIPE:
		return precedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precedenceMultiply
	case token.DCOLON:
		if p.dialect.SupportsCastOperator {
			return precedencePostfix
		}
	}
	return precedenceNone
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	switch p.token.Type {
	case token.NOT:
		p.nextToken() // consume NOT
		return p.parseNegatableInfix(left, true)

	case token.IN, token.BETWEEN, token.LIKE, token.ILIKE:
		return p.parseNegatableInfix(left, false)

	case token.IS:
		p.nextToken()
		not := p.match(token.NOT)
		if !p.expect(token.NULL) {
			return nil
		}
		return &core.IsNullExpr{Expr: left, Not: not}

	case token.DCOLON:
		p.nextToken()
		return &core.CastExpr{Expr: left, Type: p.parseDataType()}
	}

	// Standard binary operators, left-associative
	op := p.token.Type
	p.nextToken()
	right := p.parseExpressionWithPrecedence(prec + 1)
	if right == nil {
		return nil
	}
	return &core.BinaryExpr{Left: left, Op: op, Right: right}
}

func (p *Parser) parseNegatableInfix(left core.Expr, not bool) core.Expr {
	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, not)
	case token.BETWEEN:
		p.nextToken()
		low := p.parseExpressionWithPrecedence(precedenceAddition)
		if !p.expect(token.AND) {
			return nil
		}
		high := p.parseExpressionWithPrecedence(precedenceAddition)
		return &core.BetweenExpr{Expr: left, Not: not, Low: low, High: high}
	case token.LIKE, token.ILIKE:
		op := p.token.Type
		p.nextToken()
		pattern := p.parseExpressionWithPrecedence(precedenceAddition)
		return &core.LikeExpr{Expr: left, Not: not, Op: op, Pattern: pattern}
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "IN, BETWEEN or LIKE"))
	return nil
}

// parseInExpr parses: IN "(" (select_stmt | expr_list) ")"
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}

	in := &core.InExpr{Expr: left, Not: not}
	if p.check(token.SELECT) || p.check(token.WITH) {
		in.Query = p.parseSelectStmt()
	} else {
		in.Values = p.parseExpressionList()
	}
	if p.failed() || !p.expect(token.RPAREN) {
		return nil
	}
	return in
}

// parseDataType parses a type name such as INT, VARCHAR(256), DECIMAL(10, 2),
// DOUBLE PRECISION or VARCHAR(MAX).
func (p *Parser) parseDataType() *core.DataType {
	name := p.expectIdent()
	if p.failed() {
		return nil
	}
	for p.token.Is("PRECISION") || p.token.Is("VARYING") {
		name += " " + p.token.Literal
		p.nextToken()
	}

	dt := &core.DataType{Name: name}
	if p.match(token.LPAREN) {
		for {
			if !p.check(token.NUMBER) && !p.token.Is("MAX") {
				p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "type parameter"))
				return nil
			}
			dt.Params = append(dt.Params, p.token.Literal)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
	}
	return dt
}
