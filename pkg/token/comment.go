package token

// CommentKind distinguishes line vs block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- comment
	BlockComment                    // /* comment */
)

// Comment represents a SQL comment with position. Comments never enter
// the main token stream; the lexer collects them on the side so scans
// over the stream stay free of noise tokens.
type Comment struct {
	Kind CommentKind
	Text string // includes delimiters (-- or /* */)
	Span Span
}

// IsLineComment returns true if this is a line comment.
func (c *Comment) IsLineComment() bool {
	return c.Kind == LineComment
}
