package ctegraph

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/transql/pkg/core"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("cycle detected")

// CycleError reports CTEs that read from each other. Path starts and ends
// with the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

type mark int

const (
	unvisited mark = iota
	visiting
	done
)

// Sort returns node names ordered so that every node comes after all nodes
// it references. Nodes are visited in insertion order and dependencies in
// reference order, so the result is deterministic. A reference cycle fails
// with *CycleError.
func (g *Graph) Sort() ([]string, error) {
	marks := make(map[string]mark, len(g.order))
	result := make([]string, 0, len(g.order))
	var stack []string

	var visit func(k string) error
	visit = func(k string) error {
		switch marks[k] {
		case done:
			return nil
		case visiting:
			return &CycleError{Path: g.cyclePath(stack, k)}
		}

		marks[k] = visiting
		stack = append(stack, k)
		for _, ref := range g.nodes[k].References {
			dep := key(ref)
			if _, ok := g.nodes[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		marks[k] = done

		result = append(result, g.nodes[k].Name)
		return nil
	}

	for _, k := range g.order {
		if err := visit(k); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (g *Graph) cyclePath(stack []string, k string) []string {
	start := 0
	for i, s := range stack {
		if s == k {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		path = append(path, g.nodes[s].Name)
	}
	return append(path, g.nodes[k].Name)
}

// Assemble returns a statement with body wrapped in one WITH clause listing
// the nodes named in order. The clause is RECURSIVE if any source WITH was.
// With an empty order the statement carries no WITH clause.
func Assemble(g *Graph, order []string, body *core.SelectBody) *core.SelectStmt {
	stmt := &core.SelectStmt{Body: body}
	if len(order) == 0 {
		return stmt
	}

	with := &core.WithClause{Recursive: g.Recursive()}
	for _, name := range order {
		node, ok := g.Get(name)
		if !ok {
			continue
		}
		with.CTEs = append(with.CTEs, &core.CTE{Name: node.Name, Columns: node.Columns, Select: node.Subtree})
	}
	stmt.With = with
	return stmt
}
