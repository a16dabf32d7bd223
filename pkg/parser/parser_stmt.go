package parser

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Statement summarization: WITH clause, CTEs, SELECT list, DML targets.

// parseStatement summarizes one statement starting at the current token.
func (p *Parser) parseStatement() *Chunk {
	chunk := &Chunk{}

	if p.check(token.WITH) {
		p.parseWithClause(chunk)
	}

	switch p.cur().Type {
	case token.SELECT:
		p.parseSelect(chunk)
	case token.INSERT:
		p.parseInsert(chunk)
	case token.UPDATE:
		p.parseUpdate(chunk)
	case token.DELETE:
		p.parseDelete(chunk)
	case token.MERGE:
		p.parseMerge(chunk)
	case token.CREATE:
		p.parseCreate(chunk)
	case token.DROP:
		p.parseDrop(chunk)
	case token.DECLARE:
		chunk.Kind = ChunkDeclare
		p.advance()
		p.skipClauses(chunk)
	case token.EXEC:
		chunk.Kind = ChunkExec
		p.advance()
		p.skipClauses(chunk)
	default:
		p.skipClauses(chunk)
	}

	return chunk
}

// parseWithClause parses a WITH clause with CTE definitions.
func (p *Parser) parseWithClause(chunk *Chunk) {
	p.advance() // WITH
	recursive := p.match(token.RECURSIVE)

	for {
		if !token.IsIdent(p.cur().Type) {
			return
		}
		cte := &CTEDefinition{Name: stripName(p.cur().Literal)}
		p.advance()

		// Optional declared column list: name (a, b, c) AS (...)
		if p.check(token.LPAREN) && !p.subqueryAhead() {
			cte.DeclaredColumns = p.parseColumnList()
		}

		if !p.match(token.AS) {
			chunk.CTEs = append(chunk.CTEs, cte)
			return
		}
		if p.check(token.LPAREN) {
			cte.Body = p.parseParenBody()
		}
		cte.Recursive = recursive || bodyReferences(cte.Body, cte.Name)
		chunk.CTEs = append(chunk.CTEs, cte)

		if !p.match(token.COMMA) {
			return
		}
	}
}

// bodyReferences reports whether the chunk's FROM tables reference the
// given name (self-reference makes a CTE recursive even without the
// RECURSIVE keyword, as in T-SQL).
func bodyReferences(body *Chunk, name string) bool {
	if body == nil {
		return false
	}
	for _, t := range body.Tables {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	for _, child := range body.children() {
		if bodyReferences(child, name) {
			return true
		}
	}
	return false
}

// parseSelect parses a SELECT statement including chained set operations.
// Chained cores contribute table references; produced columns come from
// the first core only.
func (p *Parser) parseSelect(chunk *Chunk) {
	if chunk.Kind == ChunkUnknown {
		chunk.Kind = ChunkSelect
	}
	for {
		p.parseSelectCore(chunk)
		if p.check(token.UNION) || p.check(token.EXCEPT) || p.check(token.INTERSECT) {
			p.advance()
			p.match(token.ALL)
			p.match(token.DISTINCT)
			if p.check(token.SELECT) {
				continue
			}
		}
		return
	}
}

// parseSelectCore parses one SELECT core: list, optional INTO target,
// FROM clause, then skips the remaining clauses.
func (p *Parser) parseSelectCore(chunk *Chunk) {
	if !p.match(token.SELECT) {
		return
	}

	if p.match(token.TOP) {
		if p.check(token.LPAREN) {
			p.skipParenGroup()
		} else {
			p.match(token.NUMBER)
		}
	}
	if !p.match(token.DISTINCT) {
		p.match(token.ALL)
	}

	cols := p.parseSelectList(chunk)
	if chunk.ProducedColumns == nil {
		chunk.ProducedColumns = cols
	}

	// SELECT ... INTO #target
	if p.match(token.INTO) {
		if parts, ok := p.parseNameChain(); ok {
			chunk.Created = append(chunk.Created, TableDefinition{
				Name:    parts[len(parts)-1],
				Columns: cols,
			})
		}
	}

	if p.match(token.FROM) {
		p.parseFromClause(chunk)
	}

	p.skipClauses(chunk)
}

// parseSelectList scans the SELECT list and returns the produced column
// names. Scalar subqueries in the list are captured as subchunks.
func (p *Parser) parseSelectList(chunk *Chunk) []string {
	cols := []string{}
	itemStart := p.pos
	depth := 0

	flush := func(end int) {
		cols = append(cols, producedName(p.tokens[itemStart:end]))
	}

	for !p.atEnd() {
		t := p.cur()
		switch {
		case t.Type == token.LPAREN:
			if p.subqueryAhead() {
				chunk.Subchunks = append(chunk.Subchunks, p.parseParenBody())
				continue
			}
			depth++
			p.advance()
		case t.Type == token.RPAREN:
			if depth == 0 {
				flush(p.pos)
				return cols
			}
			depth--
			p.advance()
		case depth == 0 && t.Type == token.COMMA:
			flush(p.pos)
			p.advance()
			itemStart = p.pos
		case depth == 0 && endsSelectList(t.Type):
			flush(p.pos)
			return cols
		default:
			p.advance()
		}
	}
	flush(p.pos)
	return cols
}

// endsSelectList returns true for tokens that terminate the SELECT list.
func endsSelectList(t token.Type) bool {
	switch t {
	case token.FROM, token.INTO, token.WHERE, token.GROUP, token.HAVING,
		token.ORDER, token.UNION, token.EXCEPT, token.INTERSECT,
		token.SEMICOLON, token.GO:
		return true
	}
	return token.IsStatementStart(t) && t != token.SELECT && t != token.WITH
}

// producedName derives the exposed column name from one SELECT-list
// item's tokens: the alias when one is declared, the final segment of a
// qualified chain otherwise, "*" for stars, and "" for anonymous
// expressions.
func producedName(toks []token.Token) string {
	n := len(toks)
	if n == 0 {
		return ""
	}
	if n == 1 {
		switch {
		case toks[0].Type == token.STAR:
			return "*"
		case token.IsIdent(toks[0].Type):
			return stripName(toks[0].Literal)
		}
		return ""
	}

	last := toks[n-1]
	prev := toks[n-2]

	if last.Type == token.STAR && prev.Type == token.DOT {
		return "*"
	}
	if !token.IsIdent(last.Type) {
		return ""
	}

	switch prev.Type {
	case token.AS, token.DOT:
		return stripName(last.Literal)
	case token.NUMBER, token.STRING, token.RPAREN, token.STAR,
		token.VARIABLE, token.END, token.NULL:
		// expression followed by a bare alias
		return stripName(last.Literal)
	}
	if token.IsIdent(prev.Type) {
		return stripName(last.Literal)
	}
	return ""
}

// parseInsert parses INSERT [INTO] target [(cols)] {VALUES ... | SELECT ...}.
func (p *Parser) parseInsert(chunk *Chunk) {
	chunk.Kind = ChunkInsert
	p.advance()
	p.match(token.INTO)
	p.parseTableRef(chunk)

	if p.check(token.LPAREN) && !p.subqueryAhead() {
		chunk.InsertColumns = p.parseColumnList()
	}

	for !p.atEnd() {
		t := p.cur()
		switch t.Type {
		case token.SELECT:
			p.parseSelect(chunk)
			return
		case token.VALUES:
			p.advance()
			p.skipClauses(chunk)
			return
		case token.SEMICOLON, token.GO:
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
		p.advance()
	}
}

// parseUpdate parses UPDATE target SET ... [FROM from_clause] [WHERE ...].
func (p *Parser) parseUpdate(chunk *Chunk) {
	chunk.Kind = ChunkUpdate
	p.advance()
	p.parseTableRef(chunk)

	if p.match(token.SET) {
		p.skipUntil(chunk, token.FROM, token.WHERE, token.OUTPUT)
	}
	if p.match(token.FROM) {
		p.parseFromClause(chunk)
	}
	p.skipClauses(chunk)
}

// parseDelete parses DELETE [target] FROM ... — both the ANSI form and
// the T-SQL alias form (DELETE t FROM tbl t WHERE ...).
func (p *Parser) parseDelete(chunk *Chunk) {
	chunk.Kind = ChunkDelete
	p.advance()
	if p.match(token.TOP) {
		if p.check(token.LPAREN) {
			p.skipParenGroup()
		} else {
			p.match(token.NUMBER)
		}
	}

	if p.match(token.FROM) {
		p.parseFromClause(chunk)
	} else if token.IsIdent(p.cur().Type) {
		p.parseTableRef(chunk)
		if p.match(token.FROM) {
			p.parseFromClause(chunk)
		}
	}
	p.skipClauses(chunk)
}

// parseMerge parses MERGE [INTO] target USING source ON ... .
func (p *Parser) parseMerge(chunk *Chunk) {
	chunk.Kind = ChunkMerge
	p.advance()
	p.match(token.INTO)
	p.parseTableRef(chunk)

	if p.match(token.USING) {
		p.parseTableRef(chunk)
	}

	// WHEN MATCHED THEN UPDATE/INSERT/DELETE actions are part of the
	// MERGE statement, so the generic statement-boundary skip would cut
	// it short. Consume everything up to the next separator instead.
	for !p.atEnd() {
		switch p.cur().Type {
		case token.SEMICOLON, token.GO:
			return
		case token.LPAREN:
			if p.subqueryAhead() {
				chunk.Subchunks = append(chunk.Subchunks, p.parseParenBody())
				continue
			}
			p.skipParenGroup()
			continue
		}
		p.advance()
	}
}

// parseCreate parses CREATE TABLE (recording the definition for temp-table
// lifetime tracking) and CREATE VIEW ... AS select.
func (p *Parser) parseCreate(chunk *Chunk) {
	chunk.Kind = ChunkCreate
	p.advance()

	switch p.cur().Type {
	case token.TABLE:
		p.advance()
		parts, ok := p.parseNameChain()
		if !ok {
			return
		}
		def := TableDefinition{Name: parts[len(parts)-1]}
		if p.check(token.LPAREN) {
			def.Columns = p.parseColumnList()
		}
		chunk.Created = append(chunk.Created, def)
		p.skipClauses(chunk)

	case token.VIEW:
		p.advance()
		parts, ok := p.parseNameChain()
		if !ok {
			return
		}
		if p.match(token.AS) {
			body := p.parseStatement()
			chunk.Subchunks = append(chunk.Subchunks, body)
			chunk.Created = append(chunk.Created, TableDefinition{
				Name:    parts[len(parts)-1],
				Columns: body.ProducedColumns,
			})
			return
		}
		p.skipClauses(chunk)

	default:
		p.skipClauses(chunk)
	}
}

// parseDrop parses DROP TABLE name[, name ...].
func (p *Parser) parseDrop(chunk *Chunk) {
	chunk.Kind = ChunkDrop
	p.advance()
	if !p.match(token.TABLE) {
		p.match(token.VIEW)
	}

	// DROP TABLE IF EXISTS name
	if p.check(token.IDENT) && strings.EqualFold(p.cur().Literal, "if") && p.peekIs(1, token.EXISTS) {
		p.advance()
		p.advance()
	}

	for {
		parts, ok := p.parseNameChain()
		if !ok {
			break
		}
		chunk.Dropped = append(chunk.Dropped, parts[len(parts)-1])
		if !p.match(token.COMMA) {
			break
		}
	}
	p.skipClauses(chunk)
}

// parseNameChain reads a dotted identifier chain (brackets stripped).
// Returns false when the current token is not an identifier.
func (p *Parser) parseNameChain() ([]string, bool) {
	if !token.IsIdent(p.cur().Type) {
		return nil, false
	}
	parts := []string{stripName(p.cur().Literal)}
	p.advance()
	for p.check(token.DOT) {
		p.advance()
		if !token.IsIdent(p.cur().Type) {
			break // trailing dot mid-typing
		}
		parts = append(parts, stripName(p.cur().Literal))
		p.advance()
	}
	return parts, true
}

// parseColumnList reads a parenthesized list and returns the first
// identifier of each comma-separated group: this covers both plain name
// lists, (ID, Name, Dept), and CREATE TABLE column definitions where
// types and constraints follow each name.
func (p *Parser) parseColumnList() []string {
	if !p.match(token.LPAREN) {
		return nil
	}
	var cols []string
	depth := 1
	expect := true

	for !p.atEnd() && depth > 0 {
		t := p.cur()
		switch t.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.COMMA:
			if depth == 1 {
				expect = true
			}
		default:
			if depth == 1 && expect && token.IsIdent(t.Type) {
				cols = append(cols, stripName(t.Literal))
				expect = false
			}
		}
		p.advance()
	}
	return cols
}
