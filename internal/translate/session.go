package translate

import (
	"github.com/leapstack-labs/transql/internal/ctegraph"
	"github.com/leapstack-labs/transql/pkg/core"
)

// Session is the mutable state of one Translate call. It is created when
// the call starts and dropped when it returns.
type Session struct {
	// Namer mints every synthetic name of the request, across statements and
	// text rewrites.
	Namer *ctegraph.Namer
	// Statements collects the outcome of each statement in source order.
	Statements []*Statement
}

// Statement describes how one statement of the script was restructured.
type Statement struct {
	// Graph holds every CTE of the statement, synthetic ones included.
	Graph *ctegraph.Graph
	// Order is the sequence the CTEs are emitted in.
	Order []string
	// Hoisted counts the select clauses moved into synthetic CTEs.
	Hoisted int
}

// NewSession creates a session for script. Every CTE and table name of the
// script is reserved so generated names cannot shadow them.
func NewSession(script *core.Script) *Session {
	namer := ctegraph.NewNamer()
	for _, stmt := range script.Stmts {
		namer.Reserve(ctegraph.ReservedNames(stmt)...)
	}
	return &Session{Namer: namer}
}
