// Package parser provides SQL parsing with dialect-aware syntax validation.
//
// # Usage
//
//	d, _ := dialect.Get("redshift")
//	script, err := parser.Parse(sql, d)
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for the query subset of
// SQL used by warehouse transformations:
//
//	script        → statement (';' statement)* [';']
//	statement     → select_stmt | CREATE [OR REPLACE] (TABLE|VIEW) name AS select_stmt
//	select_stmt   → [WITH [RECURSIVE] cte_list] select_body
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT|MINUS) [ALL] select_body]
//	select_core   → SELECT [DISTINCT] [TOP n] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [QUALIFY expr] [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/dialect"
	"github.com/leapstack-labs/transql/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer   *Lexer
	token   token.Token // current token
	peek    token.Token // lookahead token
	peek2   token.Token // second lookahead token
	errors  ErrorList
	dialect *dialect.Dialect
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string, d *dialect.Dialect) *Parser {
	if d == nil {
		d = &dialect.Dialect{Name: "ansi"}
	}
	p := &Parser{
		lexer:   NewLexer(sql),
		dialect: d,
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses every statement in sql. On failure the returned error is an
// ErrorList of *ParseError.
func Parse(sql string, d *dialect.Dialect) (*core.Script, error) {
	p := NewParser(sql, d)
	script := p.parseScript()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return script, nil
}

// ParseSelect parses a single SELECT statement.
func ParseSelect(sql string, d *dialect.Dialect) (*core.SelectStmt, error) {
	script, err := Parse(sql, d)
	if err != nil {
		return nil, err
	}
	if len(script.Stmts) != 1 {
		return nil, fmt.Errorf("expected exactly one statement, got %d", len(script.Stmts))
	}
	stmt, ok := script.Stmts[0].(*core.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("expected a SELECT statement, got %s", script.Stmts[0].Kind())
	}
	return stmt, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// matchWord consumes the current token if it is the non-reserved word.
func (p *Parser) matchWord(word string) bool {
	if p.token.Is(word) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), t))
	return false
}

// expectWord is expect for non-reserved words.
func (p *Parser) expectWord(word string) bool {
	if p.matchWord(word) {
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), word))
	return false
}

// expectIdent consumes an identifier and returns its name.
func (p *Parser) expectIdent() string {
	if p.check(token.IDENT) {
		name := p.token.Literal
		p.nextToken()
		return name
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "identifier"))
	return ""
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

func (p *Parser) describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.ILLEGAL:
		return fmt.Sprintf("%q", tok.Literal)
	case token.IDENT, token.NUMBER:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return "string literal"
	}
	return tok.Type.String()
}

// isAliasToken reports whether tok can start an implicit (AS-less) alias.
func (p *Parser) isAliasToken(tok token.Token) bool {
	if tok.Type != token.IDENT {
		return false
	}
	if tok.Quoted {
		return true
	}
	if p.dialect.MinusIsExcept && tok.Is("MINUS") {
		return false
	}
	return true
}

// ---------- Script ----------

func (p *Parser) parseScript() *core.Script {
	script := &core.Script{}
	for {
		for p.match(token.SEMICOLON) {
		}
		if p.check(token.EOF) {
			break
		}

		comments := p.token.Leading
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		switch s := stmt.(type) {
		case *core.SelectStmt:
			s.Comments = comments
		case *core.CreateAs:
			s.Comments = comments
		}
		script.Stmts = append(script.Stmts, stmt)

		if !p.check(token.SEMICOLON) && !p.check(token.EOF) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(p.token), "';' or end of input"))
			return nil
		}
	}
	if len(script.Stmts) == 0 {
		p.addError("empty input: expected a statement")
		return nil
	}
	return script
}
