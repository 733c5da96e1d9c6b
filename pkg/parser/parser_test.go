package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/transql/pkg/core"
	"github.com/leapstack-labs/transql/pkg/dialect"
	"github.com/leapstack-labs/transql/pkg/dialects/databricks"
	"github.com/leapstack-labs/transql/pkg/dialects/redshift"
	"github.com/leapstack-labs/transql/pkg/token"
)

func mustParse(t *testing.T, sql string) *core.SelectStmt {
	t.Helper()
	stmt, err := ParseSelect(sql, redshift.Redshift)
	require.NoError(t, err)
	return stmt
}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"simple", "SELECT a, b FROM t"},
		{"qualified star", "SELECT t.*, u.id FROM s.t AS t JOIN u ON t.id = u.id"},
		{"where and group", "SELECT a, count(*) FROM t WHERE b > 1 AND c IS NOT NULL GROUP BY a HAVING count(*) > 2"},
		{"order limit offset", "SELECT a FROM t ORDER BY a DESC NULLS LAST, b LIMIT 10 OFFSET 5"},
		{"set operations", "SELECT a FROM t UNION ALL SELECT a FROM u EXCEPT SELECT a FROM v"},
		{"minus", "SELECT a FROM t MINUS SELECT a FROM u"},
		{"cte", "WITH x AS (SELECT 1 AS one), y AS (SELECT one FROM x) SELECT * FROM y"},
		{"cte column list", "WITH x(a, b) AS (SELECT 1, 2) SELECT a FROM x"},
		{"recursive cte column list", "WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r WHERE n < 3) SELECT n FROM r"},
		{"recursive cte", "WITH RECURSIVE r AS (SELECT 1 AS n UNION ALL SELECT n + 1 FROM r WHERE n < 3) SELECT n FROM r"},
		{"derived table", "SELECT d.a FROM (SELECT a FROM t) d"},
		{"joins", "SELECT * FROM a LEFT OUTER JOIN b USING (id) CROSS JOIN c FULL JOIN d ON a.x = d.x, e"},
		{"case", "SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END AS size FROM t"},
		{"simple case", "SELECT CASE a WHEN 1 THEN 'one' END FROM t"},
		{"casts", "SELECT CAST(a AS VARCHAR(256)), b::DECIMAL(10, 2), c::double precision FROM t"},
		{"in between like", "SELECT * FROM t WHERE a IN (1, 2) AND b NOT BETWEEN 1 AND 5 AND c ILIKE 'x%' AND d NOT IN (SELECT d FROM u)"},
		{"exists", "SELECT * FROM t WHERE NOT EXISTS (SELECT 1 FROM u WHERE u.id = t.id)"},
		{"window", "SELECT row_number() OVER (PARTITION BY a ORDER BY b ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM t"},
		{"ignore nulls", "SELECT FIRST_VALUE(x) IGNORE NULLS OVER (PARTITION BY y ORDER BY z) FROM t"},
		{"listagg", "SELECT LISTAGG(name, ',') WITHIN GROUP (ORDER BY name) FROM t"},
		{"top", "SELECT TOP 10 a FROM t"},
		{"qualify", "SELECT a FROM t QUALIFY row_number() OVER (PARTITION BY a ORDER BY b) = 1"},
		{"typed literal", "SELECT * FROM t WHERE d > DATE '2024-01-01'"},
		{"extract", "SELECT EXTRACT(year FROM created_at) FROM t"},
		{"left function", "SELECT left(name, 3), right(name, 2) FROM t"},
		{"no from", "SELECT 1"},
		{"trailing semicolon", "SELECT 1;"},
		{"keyword-like names", "SELECT first, last, rows FROM range"},
		{"concat", "SELECT 'a' + col + 'b', x || y FROM t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql, redshift.Redshift)
			require.NoError(t, err)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		msg  string
	}{
		{"empty", "  ", "empty input"},
		{"missing select list", "SELECT FROM t", "expected expression"},
		{"unclosed paren", "SELECT (a FROM t", "expected )"},
		{"bad statement", "DELETE FROM t", "expected SELECT, WITH or CREATE"},
		{"unterminated string", "SELECT 'abc", "unterminated string literal"},
		{"ignore nulls without over", "SELECT FIRST_VALUE(x) IGNORE NULLS FROM t", "IGNORE NULLS requires an OVER clause"},
		{"junk after statement", "SELECT a FROM t )", "expected ';' or end of input"},
		{"empty cte column list", "WITH x() AS (SELECT 1) SELECT * FROM x", "expected identifier"},
		{"unclosed cte column list", "WITH x(a, b AS (SELECT 1) SELECT * FROM x", "expected )"},
		{"invalid utf-8", "SELECT \xff FROM t", ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql, redshift.Redshift)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected a *ParseError in %v", err)
		})
	}
}

func TestParse_DialectFeatures(t *testing.T) {
	_, err := Parse("SELECT TOP 5 a FROM t", databricks.Databricks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP is not supported in databricks dialect")

	plain := &dialect.Dialect{Name: "plain"}
	_, err = Parse("SELECT a FROM t QUALIFY a = 1", plain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUALIFY is not supported")

	// Without MINUS as a set operator the word is a table alias.
	script, err := Parse("SELECT a FROM t minus", plain)
	require.NoError(t, err)
	from := core.Query(script.Stmts[0]).Body.Left.From
	assert.Equal(t, "minus", from.Source.(*core.TableName).Alias)
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("SELECT a\nFROM t\nWHERE )", redshift.Redshift)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Pos.Line)
	assert.Equal(t, 7, perr.Pos.Column)
}

func TestParse_Structure(t *testing.T) {
	stmt := mustParse(t, `WITH second AS (SELECT * FROM first), first AS (SELECT 1 AS id)
SELECT s.id AS id, s.id + 1 AS next_id FROM second s WHERE next_id > 1`)

	require.NotNil(t, stmt.With)
	require.Len(t, stmt.With.CTEs, 2)
	assert.Equal(t, "second", stmt.With.CTEs[0].Name)
	assert.Equal(t, "first", stmt.With.CTEs[1].Name)

	core0 := stmt.Body.Left
	require.Len(t, core0.Columns, 2)
	assert.Equal(t, "next_id", core0.Columns[1].Alias)

	src := core0.From.Source.(*core.TableName)
	assert.Equal(t, "second", src.Name)
	assert.Equal(t, "s", src.Alias)

	where := core0.Where.(*core.BinaryExpr)
	assert.Equal(t, token.GT, where.Op)
	assert.Equal(t, &core.ColumnRef{Column: "next_id"}, where.Left)
}

func TestParse_FuncCallModifiers(t *testing.T) {
	stmt := mustParse(t, "SELECT last_value(x) ignore nulls over (partition by y\n order by z) FROM t")
	fn := stmt.Body.Left.Columns[0].Expr.(*core.FuncCall)

	assert.Equal(t, "last_value", fn.Name)
	assert.Equal(t, core.IgnoreNulls, fn.NullTreatment)
	require.NotNil(t, fn.Window)
	assert.Len(t, fn.Window.PartitionBy, 1)
	assert.Len(t, fn.Window.OrderBy, 1)
}

func TestParse_TopBecomesLimit(t *testing.T) {
	stmt := mustParse(t, "SELECT TOP 3 a FROM t")
	assert.Equal(t, &core.Literal{Type: core.LiteralNumber, Value: "3"}, stmt.Body.Left.Limit)
}

func TestParse_CastOperator(t *testing.T) {
	stmt := mustParse(t, "SELECT a::varchar(max) FROM t")
	cast := stmt.Body.Left.Columns[0].Expr.(*core.CastExpr)
	assert.Equal(t, &core.DataType{Name: "varchar", Params: []string{"max"}}, cast.Type)
}

func TestParse_CreateAs(t *testing.T) {
	script, err := Parse("CREATE OR REPLACE VIEW analytics.v AS SELECT 1 AS one; SELECT 2", redshift.Redshift)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 2)

	create := script.Stmts[0].(*core.CreateAs)
	assert.True(t, create.OrReplace)
	assert.Equal(t, "VIEW", create.Object)
	assert.Equal(t, "analytics", create.Name.Schema)
	assert.Equal(t, "v", create.Name.Name)
	assert.NotNil(t, create.Query)
}

func TestParse_Precedence(t *testing.T) {
	stmt := mustParse(t, "SELECT a + b * c FROM t")
	bin := stmt.Body.Left.Columns[0].Expr.(*core.BinaryExpr)
	assert.Equal(t, token.PLUS, bin.Op)
	assert.Equal(t, token.STAR, bin.Right.(*core.BinaryExpr).Op)

	stmt = mustParse(t, "SELECT * FROM t WHERE a = 1 OR b = 2 AND c = 3")
	or := stmt.Body.Left.Where.(*core.BinaryExpr)
	assert.Equal(t, token.OR, or.Op)
	assert.Equal(t, token.AND, or.Right.(*core.BinaryExpr).Op)
}

func TestParse_CTEColumns(t *testing.T) {
	stmt := mustParse(t, "WITH x(a, \"B\") AS (SELECT 1, 2), y AS (SELECT a FROM x) SELECT * FROM y")
	require.Len(t, stmt.With.CTEs, 2)
	assert.Equal(t, []string{"a", "B"}, stmt.With.CTEs[0].Columns)
	assert.Nil(t, stmt.With.CTEs[1].Columns)
}

func TestParse_StatementComments(t *testing.T) {
	script, err := Parse("-- one\nSELECT 1 /* inside */ ;\n/* two */ CREATE VIEW v AS SELECT 2", redshift.Redshift)
	require.NoError(t, err)
	require.Len(t, script.Stmts, 2)

	first := script.Stmts[0].(*core.SelectStmt)
	require.Len(t, first.Comments, 1)
	assert.Equal(t, "-- one", first.Comments[0].Text)

	second := script.Stmts[1].(*core.CreateAs)
	require.Len(t, second.Comments, 1)
	assert.Equal(t, "/* two */", second.Comments[0].Text)
	assert.Empty(t, second.Query.Comments)
}
