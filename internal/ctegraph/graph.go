// Package ctegraph records the common table expressions of a query as a
// dependency graph, orders them so every CTE follows the CTEs it reads from,
// and reassembles a single WITH preamble from that order.
//
// A Graph is scoped to one statement of one translation request and is not
// safe for concurrent use.
package ctegraph

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/transql/pkg/core"
)

// CTENode is one named unit of the dependency graph.
type CTENode struct {
	// Name is the declared or generated CTE name.
	Name string
	// Columns is the declared column list, if any.
	Columns []string
	// Subtree is the query the node stands for. The graph owns it exclusively.
	Subtree *core.SelectStmt
	// References lists, in first-seen order, the graph nodes Subtree reads from.
	References []string
	// ReferencedBy lists the nodes that read from this one. It is derived by
	// Relink and used for inspection only.
	ReferencedBy []string
	// Aliases maps every alias declared in Subtree's select lists to the
	// expression it names.
	Aliases map[string]core.Expr
	// Synthetic marks nodes minted by alias hoisting.
	Synthetic bool
	// Recursive marks nodes declared in a WITH RECURSIVE clause.
	Recursive bool
}

// DuplicateError reports two CTE definitions sharing a name.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate CTE name %q", e.Name)
}

// Graph is an insertion-ordered set of CTE nodes keyed case-insensitively by
// name.
type Graph struct {
	nodes     map[string]*CTENode
	order     []string // keys in insertion order
	recursive bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*CTENode)}
}

func key(name string) string {
	return strings.ToLower(name)
}

// Add registers node. It fails with *DuplicateError when a node of the same
// name already exists.
func (g *Graph) Add(node *CTENode) error {
	k := key(node.Name)
	if _, exists := g.nodes[k]; exists {
		return &DuplicateError{Name: node.Name}
	}
	if node.Aliases == nil {
		node.Aliases = make(map[string]core.Expr)
	}
	g.nodes[k] = node
	g.order = append(g.order, k)
	if node.Recursive {
		g.recursive = true
	}
	return nil
}

// Get returns the node named name.
func (g *Graph) Get(name string) (*CTENode, bool) {
	node, ok := g.nodes[key(name)]
	return node, ok
}

// Has reports whether a node named name exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[key(name)]
	return ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*CTENode {
	nodes := make([]*CTENode, 0, len(g.order))
	for _, k := range g.order {
		nodes = append(nodes, g.nodes[k])
	}
	return nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Recursive reports whether any registered node came from WITH RECURSIVE.
func (g *Graph) Recursive() bool {
	return g.recursive
}

// Relink recomputes References, ReferencedBy and Aliases of every node from
// its current subtree. Every unqualified table reference naming a node of the
// graph becomes an edge, wherever that node was declared. A node reading
// from itself (a recursive CTE) gets no edge.
func (g *Graph) Relink() {
	for _, node := range g.Nodes() {
		node.References = g.references(node)
		node.Aliases = collectAliases(node.Subtree)
		node.ReferencedBy = nil
	}
	for _, node := range g.Nodes() {
		for _, ref := range node.References {
			dep := g.nodes[key(ref)]
			dep.ReferencedBy = appendUnique(dep.ReferencedBy, node.Name)
		}
	}
}

func (g *Graph) references(node *CTENode) []string {
	var refs []string
	core.Walk(node.Subtree, func(n core.Node) bool {
		t, ok := n.(*core.TableName)
		if !ok || t.Schema != "" || t.Catalog != "" {
			return true
		}
		dep, ok := g.nodes[key(t.Name)]
		if ok && dep != node {
			refs = appendUnique(refs, dep.Name)
		}
		return true
	})
	return refs
}

// collectAliases returns alias definitions of the select lists belonging to
// stmt itself; nested statements keep their own aliases.
func collectAliases(stmt *core.SelectStmt) map[string]core.Expr {
	aliases := make(map[string]core.Expr)
	core.Inspect(stmt, func(n core.Node) {
		if item, ok := n.(*core.SelectItem); ok && item.Alias != "" && item.Expr != nil {
			aliases[item.Alias] = item.Expr
		}
	})
	return aliases
}

func appendUnique(list []string, name string) []string {
	for _, s := range list {
		if strings.EqualFold(s, name) {
			return list
		}
	}
	return append(list, name)
}
