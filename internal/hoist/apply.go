package hoist

import (
	"strings"

	"github.com/leapstack-labs/transql/internal/ctegraph"
	"github.com/leapstack-labs/transql/pkg/core"
)

// Apply runs Hoist over every select clause of the nodes already in g and of
// body, innermost clauses first. It returns the number of clauses hoisted.
// Synthetic nodes added along the way are not revisited.
//
// A clause of a recursive CTE that reads from that CTE is part of the
// recursion and cannot move into a CTE of its own; its aliases are inlined.
func Apply(g *ctegraph.Graph, body *core.SelectBody, namer Namer) (int, error) {
	type root struct {
		tree core.Node
		self string // name of the recursive CTE the tree defines
	}
	roots := make([]root, 0, g.Len()+1)
	for _, node := range g.Nodes() {
		r := root{tree: node.Subtree}
		if node.Recursive {
			r.self = node.Name
		}
		roots = append(roots, r)
	}
	roots = append(roots, root{tree: body})

	hoisted := 0
	for _, r := range roots {
		// Pre-order lists parents before children; walking it backwards
		// handles nested clauses before the clauses containing them.
		var bodies []*core.SelectBody
		core.Walk(r.tree, func(n core.Node) bool {
			if b, ok := n.(*core.SelectBody); ok {
				bodies = append(bodies, b)
			}
			return true
		})

		for i := len(bodies) - 1; i >= 0; i-- {
			b := bodies[i]
			if r.self != "" && readsFrom(b.Left, r.self) {
				Inline(b.Left)
				continue
			}
			replaced, err := Hoist(b.Left, g, namer)
			if err != nil {
				return hoisted, err
			}
			if replaced != b.Left {
				b.Left = replaced
				hoisted++
			}
		}
	}
	return hoisted, nil
}

// readsFrom reports whether sc, nested selects included, reads the table
// name.
func readsFrom(sc *core.SelectCore, name string) bool {
	if sc == nil {
		return false
	}
	found := false
	core.Walk(sc, func(n core.Node) bool {
		if t, ok := n.(*core.TableName); ok && t.Schema == "" && t.Catalog == "" && strings.EqualFold(t.Name, name) {
			found = true
		}
		return !found
	})
	return found
}
