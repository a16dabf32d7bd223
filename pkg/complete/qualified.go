package complete

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// QualifiedName is the result of parsing a dotted identifier chain before
// the cursor. Single- and two-part chains are semantically ambiguous, so
// both candidate interpretations are populated and the scope resolver
// picks one using the visible-tables set:
//
//	parts            trailing dot    populated
//	a                no              Alias
//	a.               yes             Schema and Alias
//	a.b              no              Schema+Table and Alias+Column
//	a.b.             yes             Database+Schema
//	a.b.c            either          Database+Schema+Table
//	a.b.c.d (+more)  no              last four → Database..Column
type QualifiedName struct {
	Database string
	Schema   string
	Table    string
	Column   string
	Alias    string

	Parts          []string // raw identifier parts, first-to-last, unquoted
	HasTrailingDot bool     // cursor immediately follows an unconsumed dot
}

// IsEmpty returns true when no identifier parts were found.
func (q QualifiedName) IsEmpty() bool {
	return len(q.Parts) == 0
}

// String returns the dotted chain, with a trailing dot when present.
func (q QualifiedName) String() string {
	s := strings.Join(q.Parts, ".")
	if q.HasTrailingDot {
		s += "."
	}
	return s
}

// ParseQualifiedName parses the dotted identifier chain ending at the end
// of the window (the tokens immediately preceding the cursor). The walk
// is backward; output parts are in forward order. Anything that is not an
// identifier or dot stops the walk; malformed chains yield a smaller
// QualifiedName, never an error.
func ParseQualifiedName(window []token.Token) QualifiedName {
	var q QualifiedName

	i := len(window) - 1
	if i >= 0 && window[i].Type == token.DOT {
		q.HasTrailingDot = true
		i--
	}

	for i >= 0 {
		if !token.IsIdent(window[i].Type) {
			break
		}
		q.Parts = append([]string{stripIdent(window[i].Literal)}, q.Parts...)
		i--
		if i < 0 || window[i].Type != token.DOT {
			break
		}
		i--
		if i < 0 || !token.IsIdent(window[i].Type) {
			break
		}
	}

	q.assignFields()
	return q
}

// assignFields populates the semantic fields from the part count.
// Chains longer than four parts keep the last four; the extra leading
// parts are ignored rather than rejected.
func (q *QualifiedName) assignFields() {
	switch n := len(q.Parts); {
	case n == 0:
	case n == 1:
		if q.HasTrailingDot {
			q.Schema = q.Parts[0]
			q.Alias = q.Parts[0]
		} else {
			q.Alias = q.Parts[0]
		}
	case n == 2:
		if q.HasTrailingDot {
			q.Database = q.Parts[0]
			q.Schema = q.Parts[1]
		} else {
			q.Schema = q.Parts[0]
			q.Table = q.Parts[1]
			q.Alias = q.Parts[0]
			q.Column = q.Parts[1]
		}
	case n == 3:
		q.Database = q.Parts[0]
		q.Schema = q.Parts[1]
		q.Table = q.Parts[2]
	default:
		p := q.Parts[n-4:]
		q.Database = p[0]
		q.Schema = p[1]
		q.Table = p[2]
		q.Column = p[3]
	}
}

// DetectDotTrigger classifies the token stream immediately before the
// cursor offset. A trailing dot is a fresh qualified-completion trigger
// (second return true). A partial identifier after a dot means the user
// is mid-typing; the qualifier before the dot is still returned for
// filtering, but the trigger is not fresh.
func DetectDotTrigger(tokens []token.Token, offset, window int) (QualifiedName, bool) {
	// Cursor inside an identifier that follows a dot: mid-typing.
	if j := tokenAt(tokens, offset); j > 0 &&
		token.IsIdent(tokens[j].Type) && tokens[j-1].Type == token.DOT {
		return ParseQualifiedName(windowBefore(tokens, j, window)), false
	}

	i := indexBefore(tokens, offset)
	if i < 0 {
		return QualifiedName{}, false
	}

	switch {
	case tokens[i].Type == token.DOT:
		return ParseQualifiedName(windowBefore(tokens, i+1, window)), true
	case token.IsIdent(tokens[i].Type) && i > 0 && tokens[i-1].Type == token.DOT:
		return ParseQualifiedName(windowBefore(tokens, i, window)), false
	}
	return QualifiedName{}, false
}

// ReferenceBeforeDot returns the dotted chain preceding the cursor's
// qualifier dot, skipping one partially-typed identifier when the cursor
// sits inside (or at the end of) a token. Returns "" when the cursor is
// not in an alias.column-style position.
func ReferenceBeforeDot(tokens []token.Token, offset, window int) string {
	i := indexBefore(tokens, offset)
	if j := tokenAt(tokens, offset); j >= 0 && token.IsIdent(tokens[j].Type) {
		i = j - 1
	} else if i >= 0 && token.IsIdent(tokens[i].Type) {
		i--
	}
	if i < 0 || tokens[i].Type != token.DOT {
		return ""
	}
	q := ParseQualifiedName(windowBefore(tokens, i+1, window))
	if q.IsEmpty() {
		return ""
	}
	return strings.Join(q.Parts, ".")
}

// comparisonScanLimit bounds the backward scan for a comparison operator.
const comparisonScanLimit = 5

// ComparisonOperand extracts the left-hand operand of the comparison the
// cursor follows (`col = `, `t.col >= `). It scans backward at most five
// tokens for a comparison operator, treating any keyword as a clause
// boundary, then parses the qualified chain before the operator. Returns
// an empty QualifiedName when there is no comparison in reach.
func ComparisonOperand(tokens []token.Token, offset, window int) QualifiedName {
	i := indexBefore(tokens, offset)
	for j := i; j >= 0 && i-j < comparisonScanLimit; j-- {
		t := tokens[j]
		if token.IsKeyword(t.Type) {
			return QualifiedName{}
		}
		if token.IsComparison(t.Type) {
			return ParseQualifiedName(windowBefore(tokens, j, window))
		}
	}
	return QualifiedName{}
}

// windowBefore returns up to n tokens ending just before index end.
func windowBefore(tokens []token.Token, end, n int) []token.Token {
	if end > len(tokens) {
		end = len(tokens)
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return tokens[start:end]
}

// stripIdent removes bracket or double-quote delimiters from an
// identifier lexeme.
func stripIdent(lit string) string {
	if len(lit) >= 1 && lit[0] == '[' {
		lit = strings.TrimPrefix(lit, "[")
		return strings.TrimSuffix(lit, "]")
	}
	if len(lit) >= 1 && lit[0] == '"' {
		lit = strings.TrimPrefix(lit, `"`)
		lit = strings.TrimSuffix(lit, `"`)
		return strings.ReplaceAll(lit, `""`, `"`)
	}
	return lit
}
