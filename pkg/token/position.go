package token

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before returns true if p comes strictly before other in the source.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Span represents a byte range in the source text.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given byte offset.
// The end offset is treated as inside the span so that a cursor sitting
// at the very end of a statement still resolves against it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset <= s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}
