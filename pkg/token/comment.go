package token

// CommentKind distinguishes line vs block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- comment
	BlockComment                    // /* comment */
)

// Comment is a SQL comment as written, delimiters included.
type Comment struct {
	Kind CommentKind
	Text string
	Pos  Position
}
