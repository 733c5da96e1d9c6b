// Package translate turns Redshift SQL into Databricks SQL.
//
// A translation runs in a fixed order. The text is parsed; each statement's
// CTEs are collected into a graph; select clauses reusing their own aliases
// are hoisted into synthetic CTEs; references are relinked and the CTEs
// sorted and put back as one WITH clause. The tree is then rendered for the
// target dialect, and the text rewrites run last, on the rendered output.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/transql/internal/ctegraph"
	"github.com/leapstack-labs/transql/internal/hoist"
	"github.com/leapstack-labs/transql/internal/rewrite"
	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/dialect"
	"github.com/leapstack-labs/transql/pkg/dialects/databricks"
	"github.com/leapstack-labs/transql/pkg/dialects/redshift"
	"github.com/leapstack-labs/transql/pkg/format"
	"github.com/leapstack-labs/transql/pkg/parser"
)

// Translator converts SQL between a source and a target dialect. It holds no
// per-request state and is safe for concurrent use.
type Translator struct {
	source *dialect.Dialect
	target *dialect.Dialect
	logger *slog.Logger
	rules  []rewrite.Rule
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger stage events are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDialects overrides the source and target dialects.
func WithDialects(source, target *dialect.Dialect) Option {
	return func(t *Translator) {
		if source != nil {
			t.source = source
		}
		if target != nil {
			t.target = target
		}
	}
}

// WithConcatIdentifiers makes + between bare identifiers a string
// concatenation, as in first_name + ' ' + last_name without the literal.
func WithConcatIdentifiers(enabled bool) Option {
	return func(t *Translator) {
		t.rules = rewrite.NewRules(rewrite.Options{ConcatIdentifiers: enabled})
	}
}

// New creates a Redshift to Databricks translator.
func New(opts ...Option) *Translator {
	t := &Translator{
		source: redshift.Redshift,
		target: databricks.Databricks,
		logger: slog.New(slog.DiscardHandler),
		rules:  rewrite.Rules,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Result is the outcome of a successful translation.
type Result struct {
	// SQL is the translated text.
	SQL string
	// Statements describes each translated statement in source order.
	Statements []*Statement
}

// Translate converts sql. Malformed input fails with the parser's error
// (a *parser.ParseError or parser.ErrorList); later failures are *Error.
func (t *Translator) Translate(sql string) (*Result, error) {
	script, err := parser.Parse(sql, t.source)
	if err != nil {
		return nil, err
	}

	sess := NewSession(script)
	for i, stmt := range script.Stmts {
		query, err := t.restructure(sess, core.Query(stmt))
		if err != nil {
			return nil, err
		}
		switch s := stmt.(type) {
		case *core.SelectStmt:
			query.Comments = s.Comments
			script.Stmts[i] = query
		case *core.CreateAs:
			s.Query = query
		}
	}

	rendered := format.RenderScript(script, t.target)
	out, err := t.rewrite(rendered, sess.Namer)
	if err != nil {
		return nil, err
	}

	return &Result{SQL: out, Statements: sess.Statements}, nil
}

// restructure applies the tree edits to one query and returns the
// reassembled statement.
func (t *Translator) restructure(sess *Session, query *core.SelectStmt) (*core.SelectStmt, error) {
	g, err := ctegraph.Build(query)
	if err != nil {
		return nil, &Error{Stage: StageGraph, Err: err}
	}
	t.logger.Debug("graph built", slog.Int("ctes", g.Len()))

	hoisted, err := hoist.Apply(g, query.Body, sess.Namer)
	if err != nil {
		return nil, &Error{Stage: StageHoist, Err: err}
	}
	if hoisted > 0 {
		t.logger.Debug("aliases hoisted", slog.Int("clauses", hoisted))
	}

	g.Relink()
	order, err := g.Sort()
	if err != nil {
		return nil, &Error{Stage: StageSort, Err: err}
	}
	t.logger.Debug("cte order", slog.Any("order", order))

	sess.Statements = append(sess.Statements, &Statement{Graph: g, Order: order, Hoisted: hoisted})
	return ctegraph.Assemble(g, order, query.Body), nil
}

func (t *Translator) rewrite(sql string, namer rewrite.Namer) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Stage: StageRewrite, Err: fmt.Errorf("%v", r)}
		}
	}()

	for _, rule := range t.rules {
		next := rule.Rewrite(sql, namer)
		if next != sql {
			t.logger.Debug("rewrite applied", slog.String("rule", rule.Name))
		}
		sql = next
	}
	return sql, nil
}
