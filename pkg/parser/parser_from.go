package parser

import (
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// FROM clause summarization: table references, derived tables, joins.
//
// Grammar:
//
//	from_clause   → table_ref ((","| join_intro) table_ref [ON cond])*
//	table_ref     → name_chain [AS] [alias] | "(" statement ")" [AS] alias
//	name_chain    → identifier ("." identifier)*
//	join_intro    → [INNER|LEFT|RIGHT|FULL|CROSS] [OUTER] (JOIN|APPLY)

// parseFromClause parses the FROM clause into the chunk's table set.
func (p *Parser) parseFromClause(chunk *Chunk) {
	p.parseTableRef(chunk)

	for {
		switch {
		case p.match(token.COMMA):
			p.parseTableRef(chunk)
		case p.atJoinIntro():
			p.consumeJoinIntro()
			p.parseTableRef(chunk)
			p.parseJoinCondition(chunk)
		default:
			return
		}
	}
}

// atJoinIntro returns true when the current token begins a join.
func (p *Parser) atJoinIntro() bool {
	switch p.cur().Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL,
		token.CROSS, token.OUTER, token.APPLY:
		return true
	}
	return false
}

// consumeJoinIntro consumes join-type modifiers up to and including the
// JOIN or APPLY keyword.
func (p *Parser) consumeJoinIntro() {
	for {
		switch p.cur().Type {
		case token.JOIN, token.APPLY:
			p.advance()
			return
		case token.INNER, token.LEFT, token.RIGHT, token.FULL,
			token.CROSS, token.OUTER:
			p.advance()
		default:
			return
		}
	}
}

// parseJoinCondition skips an ON condition or USING column list, keeping
// any nested subqueries as subchunks.
func (p *Parser) parseJoinCondition(chunk *Chunk) {
	switch {
	case p.match(token.ON):
		p.skipJoinCondition(chunk)
	case p.check(token.USING):
		p.advance()
		p.skipParenGroup()
	}
}

// skipJoinCondition skips an ON expression up to the next join, comma, or
// clause keyword at paren depth zero.
func (p *Parser) skipJoinCondition(chunk *Chunk) {
	for !p.atEnd() {
		t := p.cur()
		if p.atJoinIntro() || t.Type == token.COMMA {
			return
		}
		switch t.Type {
		case token.LPAREN:
			if p.subqueryAhead() {
				chunk.Subchunks = append(chunk.Subchunks, p.parseParenBody())
				continue
			}
			p.skipParenGroup()
			continue
		case token.RPAREN:
			// Closing paren of an enclosing join group; the caller owns it.
			return
		case token.WHERE, token.GROUP, token.HAVING, token.ORDER,
			token.UNION, token.EXCEPT, token.INTERSECT,
			token.SEMICOLON, token.GO, token.OUTPUT:
			return
		}
		if token.IsStatementStart(t.Type) && t.Type != token.SELECT {
			return
		}
		p.advance()
	}
}

// parseTableRef parses one table reference: a qualified name with
// optional alias, or a derived table. Malformed references (mid-typing)
// are skipped silently.
func (p *Parser) parseTableRef(chunk *Chunk) {
	if p.check(token.LPAREN) {
		if p.subqueryAhead() {
			body := p.parseParenBody()
			alias := p.parseAlias()
			chunk.Derived = append(chunk.Derived, DerivedTable{Alias: alias, Body: body})
			return
		}
		// Parenthesized join group: descend into it.
		p.advance()
		p.parseFromClause(chunk)
		p.match(token.RPAREN)
		return
	}

	parts, ok := p.parseNameChain()
	if !ok {
		return
	}
	if p.pos > 0 && p.pos <= len(p.tokens) && p.tokens[p.pos-1].Type == token.DOT {
		// Chain ends in a dangling dot: the table name is still being
		// typed, recording the qualifier as a table would pollute scope.
		return
	}

	ref := TableReference{}
	switch n := len(parts); n {
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Schema, ref.Name = parts[0], parts[1]
	default:
		// Four-part (server-qualified) names keep the last three parts.
		ref.Database, ref.Schema, ref.Name = parts[n-3], parts[n-2], parts[n-1]
	}

	ref.Alias = p.parseAlias()
	if ref.Alias == "" {
		ref.Alias = ref.Name
	}
	chunk.Tables = append(chunk.Tables, ref)
}

// parseAlias consumes an optional [AS] alias and returns it, or "".
func (p *Parser) parseAlias() string {
	if p.match(token.AS) {
		if token.IsIdent(p.cur().Type) {
			alias := stripName(p.cur().Literal)
			p.advance()
			return alias
		}
		return ""
	}
	if token.IsIdent(p.cur().Type) {
		alias := stripName(p.cur().Literal)
		p.advance()
		return alias
	}
	return ""
}
