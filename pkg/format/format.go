package format

import (
	"strings"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/dialect"
)

// Render formats a statement for dialect d. The output is deterministic for
// a given tree and dialect and ends with a single newline.
func Render(stmt core.Stmt, d *dialect.Dialect) string {
	p := newPrinter(d)
	p.formatStmt(stmt)
	return p.String()
}

// RenderScript formats every statement of script, separating statements
// with semicolons. A single statement is rendered without a terminator.
func RenderScript(script *core.Script, d *dialect.Dialect) string {
	if len(script.Stmts) == 1 {
		return Render(script.Stmts[0], d)
	}
	parts := make([]string, len(script.Stmts))
	for i, stmt := range script.Stmts {
		parts[i] = strings.TrimRight(Render(stmt, d), "\n") + ";"
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Expr formats a single expression on one logical unit, without a trailing
// newline.
func Expr(e core.Expr, d *dialect.Dialect) string {
	p := newPrinter(d)
	p.formatExpr(e)
	return strings.TrimRight(p.output.String(), "\n")
}
