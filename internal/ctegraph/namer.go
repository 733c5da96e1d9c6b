package ctegraph

import (
	"fmt"
	"strings"
)

// SyntheticPrefix starts every generated CTE name.
const SyntheticPrefix = "cte_alias_"

// Namer mints synthetic CTE names for one translation request. Names are
// numbered from 1 and skip anything reserved, so they never collide with a
// name the input declares.
type Namer struct {
	next     int
	reserved map[string]bool
}

// NewNamer creates a namer that avoids the given names.
func NewNamer(reserved ...string) *Namer {
	n := &Namer{next: 1, reserved: make(map[string]bool)}
	n.Reserve(reserved...)
	return n
}

// Reserve marks names as taken.
func (n *Namer) Reserve(names ...string) {
	for _, name := range names {
		n.reserved[strings.ToLower(name)] = true
	}
}

// Next returns a fresh, unreserved name and reserves it.
func (n *Namer) Next() string {
	for {
		name := fmt.Sprintf("%s%d", SyntheticPrefix, n.next)
		n.next++
		if !n.reserved[name] {
			n.reserved[name] = true
			return name
		}
	}
}
