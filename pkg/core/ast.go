package core

import "fmt"

// Kind identifies the concrete type of a Node.
type Kind int

// Node kinds. The set is closed; see Walk.
const (
	KindInvalid Kind = iota

	// Statements and query structure
	KindSelectStmt
	KindCreateAs
	KindWithClause
	KindCTE
	KindSelectBody
	KindSelectCore
	KindSelectItem
	KindFromClause
	KindJoin
	KindTableName
	KindDerivedTable

	// Expressions
	KindColumnRef
	KindLiteral
	KindBinaryExpr
	KindUnaryExpr
	KindFuncCall
	KindCaseExpr
	KindCastExpr
	KindInExpr
	KindBetweenExpr
	KindIsNullExpr
	KindLikeExpr
	KindParenExpr
	KindStarExpr
	KindSubqueryExpr
	KindExistsExpr

	kindCount
)

var kindNames = [...]string{
	KindInvalid:      "Invalid",
	KindSelectStmt:   "SelectStmt",
	KindCreateAs:     "CreateAs",
	KindWithClause:   "WithClause",
	KindCTE:          "CTE",
	KindSelectBody:   "SelectBody",
	KindSelectCore:   "SelectCore",
	KindSelectItem:   "SelectItem",
	KindFromClause:   "FromClause",
	KindJoin:         "Join",
	KindTableName:    "TableName",
	KindDerivedTable: "DerivedTable",
	KindColumnRef:    "ColumnRef",
	KindLiteral:      "Literal",
	KindBinaryExpr:   "BinaryExpr",
	KindUnaryExpr:    "UnaryExpr",
	KindFuncCall:     "FuncCall",
	KindCaseExpr:     "CaseExpr",
	KindCastExpr:     "CastExpr",
	KindInExpr:       "InExpr",
	KindBetweenExpr:  "BetweenExpr",
	KindIsNullExpr:   "IsNullExpr",
	KindLikeExpr:     "LikeExpr",
	KindParenExpr:    "ParenExpr",
	KindStarExpr:     "StarExpr",
	KindSubqueryExpr: "SubqueryExpr",
	KindExistsExpr:   "ExistsExpr",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is implemented by every syntax tree node. The unexported method keeps
// the set closed to this package.
type Node interface {
	Kind() Kind
	node()
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for top-level statements.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for FROM sources.
type TableRef interface {
	Node
	tableRef()
}

// Script is the result of parsing a source text: one or more statements
// separated by semicolons.
type Script struct {
	Stmts []Stmt
}

// Query returns the SELECT statement carried by stmt.
func Query(stmt Stmt) *SelectStmt {
	switch s := stmt.(type) {
	case *SelectStmt:
		return s
	case *CreateAs:
		return s.Query
	}
	return nil
}
