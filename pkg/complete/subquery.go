package complete

import (
	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// InSubquery reports whether the token at cursorIdx sits inside a
// parenthesized subquery. The scan walks backward tracking paren depth;
// an opening paren at depth zero is a subquery boundary unless it is a
// function call (preceded by an identifier) or a CTE body (preceded by
// AS), in which case the scan keeps going outside it. Hitting a DML
// keyword or WITH ends the scan: a cursor directly inside those is at
// the top level of its statement.
func InSubquery(tokens []token.Token, cursorIdx int) bool {
	if cursorIdx >= len(tokens) {
		cursorIdx = len(tokens) - 1
	}
	depth := 0
	seenSelect := false
	for i := cursorIdx; i >= 0; i-- {
		switch t := tokens[i]; {
		case t.Type == token.RPAREN:
			depth++
		case t.Type == token.LPAREN:
			if depth > 0 {
				depth--
				continue
			}
			if !seenSelect {
				// No SELECT typed yet inside this group.
				continue
			}
			if i > 0 {
				prev := tokens[i-1].Type
				if token.IsIdent(prev) || prev == token.AS {
					// Function call or CTE body; not a subquery.
					continue
				}
			}
			return true
		case t.Type == token.SELECT && depth == 0:
			seenSelect = true
		case token.IsDML(t.Type) || t.Type == token.WITH:
			return false
		case t.Type == token.SEMICOLON || t.Type == token.GO:
			return false
		}
	}
	return false
}

// SubqueryBounds returns the token index range [start, end) of the
// innermost subquery enclosing cursorIdx. start is the index of the
// SELECT (or WITH) after the opening paren; end is the index of the
// matching close paren, or len(tokens) when the subquery is
// unterminated. ok is false when the cursor is not inside a subquery.
func SubqueryBounds(tokens []token.Token, cursorIdx int) (start, end int, ok bool) {
	if cursorIdx >= len(tokens) {
		cursorIdx = len(tokens) - 1
	}
	open := -1
	depth := 0
scan:
	for i := cursorIdx; i >= 0; i-- {
		switch t := tokens[i]; {
		case t.Type == token.RPAREN:
			depth++
		case t.Type == token.LPAREN:
			if depth > 0 {
				depth--
				continue
			}
			if i+1 >= len(tokens) || tokens[i+1].Type != token.SELECT {
				continue
			}
			if i > 0 {
				prev := tokens[i-1].Type
				if token.IsIdent(prev) || prev == token.AS {
					continue
				}
			}
			open = i
			break scan
		case token.IsDML(t.Type) || t.Type == token.WITH:
			return 0, 0, false
		case t.Type == token.SEMICOLON || t.Type == token.GO:
			return 0, 0, false
		}
	}
	if open < 0 {
		return 0, 0, false
	}

	start = open + 1
	depth = 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return start, i, true
			}
			depth--
		}
	}
	// Unterminated subquery runs to the end of the stream.
	return start, len(tokens), true
}

// SubqueryTables returns the tables referenced by the innermost subquery
// enclosing the cursor. Complete subqueries are reparsed from their span;
// when the reparse yields nothing (heavily malformed input mid-edit) a
// lighter backward FROM-clause scan supplies a best-effort answer.
func SubqueryTables(tokens []token.Token, cursorIdx int) []parser.TableReference {
	start, end, ok := SubqueryBounds(tokens, cursorIdx)
	if !ok {
		return nil
	}
	chunks := parser.ParseTokens(tokens[start:end])
	var refs []parser.TableReference
	for _, c := range chunks {
		refs = append(refs, c.Tables...)
	}
	if len(refs) == 0 {
		refs = extractTablesBackward(tokens, cursorIdx)
	}
	return refs
}

// DetectSubquery combines InSubquery with table extraction for the
// cursor offset. The boolean reports subquery membership; the slice
// holds the subquery's FROM tables (possibly empty when the subquery
// has no FROM clause yet).
func DetectSubquery(tokens []token.Token, offset int) (bool, []parser.TableReference) {
	idx := indexBefore(tokens, offset)
	if j := tokenAt(tokens, offset); j >= 0 {
		idx = j
	}
	if idx < 0 {
		return false, nil
	}
	if !InSubquery(tokens, idx) {
		return false, nil
	}
	return true, SubqueryTables(tokens, idx)
}

// extractTablesBackward scans backward from the cursor for the FROM
// keyword of the current paren group, then forward-parses the name and
// optional alias of each comma- or JOIN-separated table. It gives up at
// a group boundary or an enclosing SELECT without FROM.
func extractTablesBackward(tokens []token.Token, cursorIdx int) []parser.TableReference {
	if cursorIdx >= len(tokens) {
		cursorIdx = len(tokens) - 1
	}
	from := -1
	depth := 0
scan:
	for i := cursorIdx; i >= 0; i-- {
		switch tokens[i].Type {
		case token.RPAREN:
			depth++
		case token.LPAREN:
			if depth == 0 {
				break scan
			}
			depth--
		case token.FROM:
			if depth == 0 {
				from = i
				break scan
			}
		case token.SELECT, token.SEMICOLON, token.GO:
			if depth == 0 {
				break scan
			}
		}
	}
	if from < 0 {
		return nil
	}

	var refs []parser.TableReference
	i := from + 1
	for i < len(tokens) {
		ref, next := parseBackScanRef(tokens, i)
		if next == i {
			break
		}
		i = next
		if ref.Name != "" {
			refs = append(refs, ref)
		}
		i = skipToNextBackScanRef(tokens, i)
		if i < 0 {
			break
		}
	}
	return refs
}

// parseBackScanRef reads one dotted name with an optional alias starting
// at index i, returning the reference and the index after it.
func parseBackScanRef(tokens []token.Token, i int) (parser.TableReference, int) {
	var parts []string
	for i < len(tokens) && token.IsIdent(tokens[i].Type) {
		parts = append(parts, stripIdent(tokens[i].Literal))
		i++
		if i < len(tokens) && tokens[i].Type == token.DOT {
			i++
			continue
		}
		break
	}
	var ref parser.TableReference
	switch len(parts) {
	case 0:
		return ref, i
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Schema, ref.Name = parts[0], parts[1]
	default:
		p := parts[len(parts)-3:]
		ref.Database, ref.Schema, ref.Name = p[0], p[1], p[2]
	}
	ref.Alias = ref.Name
	if i < len(tokens) && tokens[i].Type == token.AS {
		i++
	}
	if i < len(tokens) && token.IsIdent(tokens[i].Type) {
		ref.Alias = stripIdent(tokens[i].Literal)
		i++
	}
	return ref, i
}

// skipToNextBackScanRef advances past a comma or a JOIN clause (and its
// ON condition) to the next table position, or returns -1 at the end of
// the FROM clause.
func skipToNextBackScanRef(tokens []token.Token, i int) int {
	depth := 0
	for i < len(tokens) {
		t := tokens[i]
		switch {
		case t.Type == token.LPAREN:
			depth++
		case t.Type == token.RPAREN:
			if depth == 0 {
				return -1
			}
			depth--
		case depth > 0:
		case t.Type == token.COMMA:
			return i + 1
		case t.Type == token.JOIN || t.Type == token.APPLY:
			return i + 1
		case t.Type == token.INNER || t.Type == token.LEFT ||
			t.Type == token.RIGHT || t.Type == token.FULL ||
			t.Type == token.CROSS || t.Type == token.OUTER ||
			t.Type == token.ON || t.Type == token.AND ||
			t.Type == token.OR || t.Type == token.EQ ||
			t.Type == token.DOT || token.IsIdent(t.Type):
			// Still inside the join condition or modifiers.
		default:
			if token.IsKeyword(t.Type) || t.Type == token.SEMICOLON ||
				t.Type == token.GO {
				return -1
			}
		}
		i++
	}
	return -1
}
