package ctegraph

import (
	"github.com/leapstack-labs/transql/pkg/core"
)

// Build registers every CTE defined anywhere in stmt, at any nesting depth,
// and links the references between them.
//
// Each WITH clause is detached from the statement that declared it: the
// returned graph owns the CTE subtrees and stmt no longer carries them. Use
// Assemble to put them back as a single preamble.
func Build(stmt *core.SelectStmt) (*Graph, error) {
	b := &builder{
		graph: New(),
		seen:  make(map[*core.WithClause]bool),
	}
	if err := b.collect(stmt); err != nil {
		return nil, err
	}
	b.graph.Relink()
	return b.graph, nil
}

type builder struct {
	graph *Graph
	seen  map[*core.WithClause]bool
}

func (b *builder) collect(stmt *core.SelectStmt) error {
	if with := stmt.With; with != nil && !b.seen[with] {
		b.seen[with] = true
		for _, cte := range with.CTEs {
			node := &CTENode{
				Name:      cte.Name,
				Columns:   cte.Columns,
				Subtree:   cte.Select,
				Recursive: with.Recursive,
			}
			if err := b.graph.Add(node); err != nil {
				return err
			}
			if err := b.collect(cte.Select); err != nil {
				return err
			}
		}
		stmt.With = nil
	}

	var err error
	core.Inspect(stmt.Body, func(n core.Node) {
		if nested, ok := n.(*core.SelectStmt); ok && err == nil {
			err = b.collect(nested)
		}
	})
	return err
}

// ReservedNames returns every CTE name and unqualified or qualified table
// name appearing in root. Generated names must avoid all of them.
func ReservedNames(root core.Node) []string {
	var names []string
	core.Walk(root, func(n core.Node) bool {
		switch t := n.(type) {
		case *core.CTE:
			names = append(names, t.Name)
		case *core.TableName:
			names = append(names, t.Name)
			if t.Alias != "" {
				names = append(names, t.Alias)
			}
		case *core.DerivedTable:
			if t.Alias != "" {
				names = append(names, t.Alias)
			}
		}
		return true
	})
	return names
}
