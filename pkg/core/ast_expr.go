package core

import "github.com/leapstack-labs/transql/pkg/token"

// ---------- Expression Types ----------

// ColumnRef represents a column reference (possibly qualified).
type ColumnRef struct {
	Table  string // optional table/alias qualifier
	Column string
}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
	LiteralTyped // DATE '2024-01-01', INTERVAL '1 day'
)

// Literal represents a literal value. String values keep their source
// escaping ('' stays doubled).
type Literal struct {
	Type     LiteralType
	Value    string
	TypeName string // for LiteralTyped
}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

// UnaryExpr represents a unary expression (NOT, -, +).
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

// NullTreatment is the IGNORE NULLS / RESPECT NULLS modifier of a window
// function.
type NullTreatment int

// NullTreatment values.
const (
	NullsDefault NullTreatment = iota
	IgnoreNulls
	RespectNulls
)

// FuncCall represents a function call. Name keeps its source spelling.
type FuncCall struct {
	Name          string
	Distinct      bool
	Star          bool // COUNT(*)
	Args          []Expr
	NullTreatment NullTreatment
	WithinGroup   []*OrderByItem // LISTAGG(...) WITHIN GROUP (ORDER BY ...)
	Filter        Expr           // FILTER (WHERE ...)
	Window        *WindowSpec
}

// WindowSpec represents a window specification (OVER clause).
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []*OrderByItem
	Frame       *FrameSpec
}

// FrameSpec represents a window frame.
type FrameSpec struct {
	Type  string // ROWS or RANGE
	Start *FrameBound
	End   *FrameBound // nil when no BETWEEN
}

// FrameBoundType represents the kind of frame bound.
type FrameBoundType string

// FrameBoundType constants.
const (
	FrameUnboundedPreceding FrameBoundType = "UNBOUNDED PRECEDING"
	FrameUnboundedFollowing FrameBoundType = "UNBOUNDED FOLLOWING"
	FrameCurrentRow         FrameBoundType = "CURRENT ROW"
	FrameExprPreceding      FrameBoundType = "PRECEDING"
	FrameExprFollowing      FrameBoundType = "FOLLOWING"
)

// FrameBound represents a frame boundary.
type FrameBound struct {
	Type   FrameBoundType
	Offset Expr // for <n> PRECEDING / FOLLOWING
}

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []*WhenClause
	Else    Expr
}

// WhenClause represents a WHEN clause in CASE.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// DataType is a type name with optional parameters, e.g. DECIMAL(10, 2).
type DataType struct {
	Name   string
	Params []string
}

// CastExpr represents CAST(expr AS type) or expr::type.
type CastExpr struct {
	Expr Expr
	Type *DataType
}

// InExpr represents an IN expression.
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *SelectStmt
}

// BetweenExpr represents a BETWEEN expression.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

// IsNullExpr represents IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

// LikeExpr represents [NOT] LIKE / ILIKE.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Op      token.TokenType // LIKE or ILIKE
	Pattern Expr
}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

// StarExpr represents * or t.* used as an expression.
type StarExpr struct {
	Table string
}

// SubqueryExpr represents a scalar subquery.
type SubqueryExpr struct {
	Select *SelectStmt
}

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not    bool
	Select *SelectStmt
}

func (*ColumnRef) Kind() Kind    { return KindColumnRef }
func (*Literal) Kind() Kind      { return KindLiteral }
func (*BinaryExpr) Kind() Kind   { return KindBinaryExpr }
func (*UnaryExpr) Kind() Kind    { return KindUnaryExpr }
func (*FuncCall) Kind() Kind     { return KindFuncCall }
func (*CaseExpr) Kind() Kind     { return KindCaseExpr }
func (*CastExpr) Kind() Kind     { return KindCastExpr }
func (*InExpr) Kind() Kind       { return KindInExpr }
func (*BetweenExpr) Kind() Kind  { return KindBetweenExpr }
func (*IsNullExpr) Kind() Kind   { return KindIsNullExpr }
func (*LikeExpr) Kind() Kind     { return KindLikeExpr }
func (*ParenExpr) Kind() Kind    { return KindParenExpr }
func (*StarExpr) Kind() Kind     { return KindStarExpr }
func (*SubqueryExpr) Kind() Kind { return KindSubqueryExpr }
func (*ExistsExpr) Kind() Kind   { return KindExistsExpr }

func (*ColumnRef) node()    {}
func (*Literal) node()      {}
func (*BinaryExpr) node()   {}
func (*UnaryExpr) node()    {}
func (*FuncCall) node()     {}
func (*CaseExpr) node()     {}
func (*CastExpr) node()     {}
func (*InExpr) node()       {}
func (*BetweenExpr) node()  {}
func (*IsNullExpr) node()   {}
func (*LikeExpr) node()     {}
func (*ParenExpr) node()    {}
func (*StarExpr) node()     {}
func (*SubqueryExpr) node() {}
func (*ExistsExpr) node()   {}

func (*ColumnRef) exprNode()    {}
func (*Literal) exprNode()      {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*FuncCall) exprNode()     {}
func (*CaseExpr) exprNode()     {}
func (*CastExpr) exprNode()     {}
func (*InExpr) exprNode()       {}
func (*BetweenExpr) exprNode()  {}
func (*IsNullExpr) exprNode()   {}
func (*LikeExpr) exprNode()     {}
func (*ParenExpr) exprNode()    {}
func (*StarExpr) exprNode()     {}
func (*SubqueryExpr) exprNode() {}
func (*ExistsExpr) exprNode()   {}
