package ctegraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/transql/pkg/dialects/databricks"
	"github.com/leapstack-labs/transql/pkg/format"
)

func TestSort_ReverseDeclared(t *testing.T) {
	g, _ := build(t, `WITH second AS (SELECT * FROM first), first AS (SELECT 1 AS id)
SELECT * FROM second`)

	order, err := g.Sort()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSort_DependenciesFirst(t *testing.T) {
	g, _ := build(t, `WITH d AS (SELECT * FROM b JOIN c ON b.x = c.x),
c AS (SELECT * FROM a),
b AS (SELECT * FROM a),
a AS (SELECT 1 AS x)
SELECT * FROM d`)

	order, err := g.Sort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	for _, node := range g.Nodes() {
		for _, ref := range node.References {
			if pos[ref] >= pos[node.Name] {
				t.Errorf("%s must come before %s in %v", ref, node.Name, order)
			}
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestSort_Cycle(t *testing.T) {
	g, _ := build(t, "WITH a AS (SELECT * FROM b), b AS (SELECT * FROM a) SELECT * FROM a")

	_, err := g.Sort()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Path)
	assert.Equal(t, "cycle detected: a -> b -> a", err.Error())
}

func TestSort_Empty(t *testing.T) {
	order, err := New().Sort()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestAssemble(t *testing.T) {
	g, stmt := build(t, `WITH second AS (SELECT id FROM first), first AS (SELECT 1 AS id)
SELECT id FROM second`)

	order, err := g.Sort()
	require.NoError(t, err)

	out := Assemble(g, order, stmt.Body)
	require.NotNil(t, out.With)
	assert.False(t, out.With.Recursive)

	assert.Equal(t, `WITH
  first AS (
    SELECT
      1 AS id
  ),
  second AS (
    SELECT
      id
    FROM first
  )
SELECT
  id
FROM second
`, format.Render(out, databricks.Databricks))
}

func TestAssemble_NoCTEs(t *testing.T) {
	g, stmt := build(t, "SELECT 1 AS one")
	out := Assemble(g, nil, stmt.Body)
	assert.Nil(t, out.With)
	assert.Same(t, stmt.Body, out.Body)
}

func TestNamer(t *testing.T) {
	n := NewNamer("cte_alias_1", "CTE_ALIAS_3")

	assert.Equal(t, "cte_alias_2", n.Next())
	assert.Equal(t, "cte_alias_4", n.Next())

	n.Reserve("cte_alias_5")
	assert.Equal(t, "cte_alias_6", n.Next())
}
