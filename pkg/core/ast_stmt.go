package core

import "github.com/leapstack-labs/transql/pkg/token"

// ---------- Statements ----------

// SelectStmt represents a complete SELECT statement, optionally preceded by
// a WITH clause.
type SelectStmt struct {
	With *WithClause
	Body *SelectBody

	// Comments written before a top-level statement.
	Comments []*token.Comment
}

// CreateAs represents CREATE [OR REPLACE] TABLE|VIEW name AS query.
type CreateAs struct {
	OrReplace bool
	Object    string // TABLE or VIEW
	Name      *TableName
	Query     *SelectStmt
	Comments  []*token.Comment
}

// WithClause represents a WITH clause (CTEs).
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	Name    string
	Columns []string // optional column list: name(a, b) AS (...)
	Select  *SelectStmt
}

// SelectBody represents the body of a SELECT with optional set operations.
type SelectBody struct {
	Left  *SelectCore
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL
	Right *SelectBody // For chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents one SELECT ... FROM ... block.
type SelectCore struct {
	Distinct bool
	Columns  []*SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	Qualify  Expr
	OrderBy  []*OrderByItem
	Limit    Expr
	Offset   Expr
}

// SelectItem represents an item in the SELECT list. An item with a non-empty
// Alias is an alias assignment.
type SelectItem struct {
	Star      bool   // SELECT *
	TableStar string // SELECT t.*
	Expr      Expr
	Alias     string
}

// OrderByItem represents an ORDER BY item.
type OrderByItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst *bool // nil = default, true = NULLS FIRST, false = NULLS LAST
}

// FromClause represents the FROM clause.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

// JoinType represents the type of join.
type JoinType string

// JoinType constants for SQL join types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr
	Using     []string
}

// TableName represents a table reference by name.
type TableName struct {
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

// Qualified reports whether the name carries a schema or catalog.
func (t *TableName) Qualified() bool {
	return t.Schema != "" || t.Catalog != ""
}

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	Select *SelectStmt
	Alias  string
}

func (*SelectStmt) Kind() Kind   { return KindSelectStmt }
func (*CreateAs) Kind() Kind     { return KindCreateAs }
func (*WithClause) Kind() Kind   { return KindWithClause }
func (*CTE) Kind() Kind          { return KindCTE }
func (*SelectBody) Kind() Kind   { return KindSelectBody }
func (*SelectCore) Kind() Kind   { return KindSelectCore }
func (*SelectItem) Kind() Kind   { return KindSelectItem }
func (*FromClause) Kind() Kind   { return KindFromClause }
func (*Join) Kind() Kind         { return KindJoin }
func (*TableName) Kind() Kind    { return KindTableName }
func (*DerivedTable) Kind() Kind { return KindDerivedTable }

func (*SelectStmt) node()   {}
func (*CreateAs) node()     {}
func (*WithClause) node()   {}
func (*CTE) node()          {}
func (*SelectBody) node()   {}
func (*SelectCore) node()   {}
func (*SelectItem) node()   {}
func (*FromClause) node()   {}
func (*Join) node()         {}
func (*TableName) node()    {}
func (*DerivedTable) node() {}

func (*SelectStmt) stmtNode() {}
func (*CreateAs) stmtNode()   {}

func (*TableName) tableRef()    {}
func (*DerivedTable) tableRef() {}
