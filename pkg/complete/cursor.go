package complete

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// PositionError reports a cursor position outside the bounds of the
// source text. Line and Column echo the caller's 1-indexed position.
type PositionError struct {
	Line   int
	Column int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d:%d is outside the document", e.Line, e.Column)
}

// lineColOffset converts a 1-indexed line/column cursor into a byte
// offset. Column is an insertion point: column 1 is before the first
// character, so a line may address one past its last character.
func lineColOffset(src string, line, col int) (int, error) {
	if line < 1 || col < 1 {
		return 0, &PositionError{Line: line, Column: col}
	}
	start := 0
	for n := 1; n < line; n++ {
		nl := strings.IndexByte(src[start:], '\n')
		if nl < 0 {
			return 0, &PositionError{Line: line, Column: col}
		}
		start += nl + 1
	}
	end := len(src)
	if nl := strings.IndexByte(src[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	off := start + col - 1
	if off > end {
		return 0, &PositionError{Line: line, Column: col}
	}
	return off, nil
}

// indexBefore returns the index of the last token that ends at or before
// offset, or -1 when no token does.
func indexBefore(tokens []token.Token, offset int) int {
	idx := -1
	for i := range tokens {
		if tokens[i].End() <= offset {
			idx = i
			continue
		}
		break
	}
	return idx
}

// tokenAt returns the index of the token the offset falls inside, or -1.
// A cursor at a token's end boundary is not inside it; that case belongs
// to indexBefore.
func tokenAt(tokens []token.Token, offset int) int {
	for i := range tokens {
		if tokens[i].Pos.Offset < offset && tokens[i].End() > offset {
			return i
		}
		if tokens[i].Pos.Offset >= offset {
			break
		}
	}
	return -1
}
