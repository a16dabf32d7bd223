// Package parser provides tolerant SQL tokenizing and statement
// summarization for completion.
//
// # Usage
//
//	chunks := parser.Parse("WITH e AS (SELECT id FROM emp) SELECT * FROM e")
//
// Parse never fails: it extracts the table references, CTE definitions and
// produced columns it can find and skips anything it cannot make sense of.
// Partially-typed statements yield partial chunks rather than errors, which
// is what the completion layers above need while the user is mid-edit.
//
// # Grammar Overview
//
// The parser is a single-pass scanner over the token stream:
//
//	script        → (statement (";" | GO)?)*
//	statement     → [WITH cte_list] (select | insert | update | delete |
//	                merge | create | drop | other)
//	cte           → identifier ["(" name_list ")"] AS "(" statement ")"
//	select        → SELECT [TOP n] [DISTINCT] select_list [INTO name]
//	                [FROM from_clause] clauses [set_op select]
//
// Clauses the summary does not need (WHERE conditions, ORDER BY, window
// specs) are skipped token-wise, with nested (SELECT ...) groups captured
// as subchunks along the way.
package parser

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Parser summarizes SQL token streams into Chunks.
type Parser struct {
	tokens []token.Token
	pos    int
	batch  int
}

// Parse tokenizes the SQL and returns one Chunk per statement.
// It never returns an error: malformed input yields best-effort chunks.
func Parse(sql string) []*Chunk {
	p := &Parser{tokens: Tokenize(sql)}
	return p.parseAll()
}

// ParseTokens summarizes an already-tokenized stream. Token positions are
// preserved, so this is safe to call on sub-slices of a larger stream.
func ParseTokens(tokens []token.Token) []*Chunk {
	p := &Parser{tokens: tokens}
	return p.parseAll()
}

func (p *Parser) parseAll() []*Chunk {
	var chunks []*Chunk
	for !p.atEnd() {
		if p.match(token.SEMICOLON) {
			continue
		}
		if p.check(token.GO) {
			p.batch++
			p.advance()
			continue
		}

		start := p.cur().Pos
		before := p.pos
		chunk := p.parseStatement()
		p.syncStatement(before)
		chunk.BatchIndex = p.batch
		chunk.Span = token.Span{Start: start, End: p.prevEndPos(start)}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ---------- Token Helpers ----------

// cur returns the current token, or EOF past the end.
func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		end := 0
		if n := len(p.tokens); n > 0 {
			end = p.tokens[n-1].End()
		}
		return token.Token{Type: token.EOF, Pos: token.Position{Line: 1, Column: 1, Offset: end}, EndOff: end}
	}
	return p.tokens[p.pos]
}

// peekIs returns true if the token n ahead is of the given type.
func (p *Parser) peekIs(n int, t token.Type) bool {
	if p.pos+n >= len(p.tokens) {
		return t == token.EOF
	}
	return p.tokens[p.pos+n].Type == t
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.cur().Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// prevEndPos returns the position just past the last consumed token.
func (p *Parser) prevEndPos(fallback token.Position) token.Position {
	if p.pos == 0 || len(p.tokens) == 0 {
		return fallback
	}
	i := p.pos - 1
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	t := p.tokens[i]
	return token.Position{Line: t.Pos.Line, Column: t.Pos.Column, Offset: t.End()}
}

// syncStatement guarantees forward progress and skips any tokens the
// statement parser left behind, up to the next statement boundary.
func (p *Parser) syncStatement(before int) {
	if p.pos == before {
		p.advance()
	}
	depth := 0
	for !p.atEnd() {
		t := p.cur()
		switch t.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth > 0 {
				depth--
			}
		case token.SEMICOLON, token.GO:
			if depth == 0 {
				return
			}
		default:
			// SELECT is excluded: it continues the current statement
			// after UNION/EXCEPT/INTERSECT.
			if depth == 0 && token.IsStatementStart(t.Type) && t.Type != token.SELECT {
				return
			}
		}
		p.advance()
	}
}

// matchingParen returns the index of the RPAREN matching the LPAREN at
// open, or -1 when the group is unterminated.
func (p *Parser) matchingParen(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseParenBody re-parses a parenthesized group as a nested statement.
// The current token must be LPAREN. An unterminated group extends to the
// end of the stream. The sub-parse runs on a slice of the original token
// stream, so positions inside the body stay valid.
func (p *Parser) parseParenBody() *Chunk {
	if !p.check(token.LPAREN) {
		return &Chunk{}
	}
	open := p.pos
	end := p.matchingParen(open)

	var inner []token.Token
	if end == -1 {
		inner = p.tokens[open+1:]
		p.pos = len(p.tokens)
	} else {
		inner = p.tokens[open+1 : end]
		p.pos = end + 1
	}

	sub := &Parser{tokens: inner, batch: p.batch}
	chunks := sub.parseAll()
	if len(chunks) > 0 {
		return chunks[0]
	}

	empty := &Chunk{BatchIndex: p.batch}
	empty.Span = token.Span{Start: p.tokens[open].Pos, End: p.prevEndPos(p.tokens[open].Pos)}
	return empty
}

// skipParenGroup skips a balanced parenthesized group without parsing it.
func (p *Parser) skipParenGroup() {
	if !p.check(token.LPAREN) {
		return
	}
	if end := p.matchingParen(p.pos); end >= 0 {
		p.pos = end + 1
		return
	}
	p.pos = len(p.tokens)
}

// subqueryAhead returns true when the current LPAREN opens a nested
// statement rather than a plain expression group.
func (p *Parser) subqueryAhead() bool {
	return p.check(token.LPAREN) && (p.peekIs(1, token.SELECT) || p.peekIs(1, token.WITH))
}

// skipClauses skips the remainder of a statement's clauses, capturing any
// nested (SELECT ...) groups as subchunks. Returns at statement
// boundaries and at set-operation keywords, which the caller owns.
func (p *Parser) skipClauses(chunk *Chunk) {
	p.skipUntil(chunk)
}

// skipUntil skips tokens until a statement boundary, a set-operation
// keyword, or one of the given stop types at paren depth zero.
func (p *Parser) skipUntil(chunk *Chunk, stops ...token.Type) {
	for !p.atEnd() {
		t := p.cur()
		switch t.Type {
		case token.SEMICOLON, token.GO, token.UNION, token.EXCEPT, token.INTERSECT:
			return
		case token.LPAREN:
			if p.subqueryAhead() {
				chunk.Subchunks = append(chunk.Subchunks, p.parseParenBody())
				continue
			}
			p.skipParenGroup()
			continue
		}
		if token.IsStatementStart(t.Type) && t.Type != token.SELECT {
			return
		}
		for _, s := range stops {
			if t.Type == s {
				return
			}
		}
		p.advance()
	}
}

// stripName removes bracket or double-quote delimiters from an
// identifier lexeme.
func stripName(lit string) string {
	if len(lit) >= 1 && lit[0] == '[' {
		lit = strings.TrimPrefix(lit, "[")
		lit = strings.TrimSuffix(lit, "]")
		return lit
	}
	if len(lit) >= 1 && lit[0] == '"' {
		lit = strings.TrimPrefix(lit, `"`)
		lit = strings.TrimSuffix(lit, `"`)
		return strings.ReplaceAll(lit, `""`, `"`)
	}
	return lit
}
