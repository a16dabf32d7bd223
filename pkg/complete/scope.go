package complete

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// visibleTables builds the shadow-resolved visible set for the cursor:
// temp and created tables from earlier statements, then CTE declarations
// and FROM entries along the chunk path from the statement down to the
// innermost nested chunk containing the cursor. Inner declarations
// replace outer ones bound to the same name.
func visibleTables(tokens []token.Token, chunks []*parser.Chunk, offset int) []TableEntry {
	batch := batchIndexAt(tokens, offset)
	entries := createdEntries(chunks, offset, batch)

	target := chunkFor(chunks, tokens, offset)
	if target == nil {
		return entries
	}

	var cteDecls []TableEntry
	var fromEntries []TableEntry

	path := target.Path(offset)
	if path == nil {
		// Cursor trails the statement (chunkFor fallback); the statement
		// scope still applies but no nested chunk can contain the cursor.
		path = []*parser.Chunk{target}
	}
	for i, c := range path {
		var owning *parser.CTEDefinition
		if i+1 < len(path) {
			owning = c.CTEOwning(path[i+1])
		}

		if owning != nil {
			// Descending into a CTE body: only CTEs declared before it
			// are visible, plus itself when recursive, and the outer
			// FROM clause is not.
			for _, cte := range c.CTEs {
				if cte == owning {
					if cte.Recursive {
						cteDecls = addEntry(cteDecls, cteEntry(cte))
					}
					break
				}
				cteDecls = addEntry(cteDecls, cteEntry(cte))
			}
			fromEntries = nil
			continue
		}

		for _, cte := range c.CTEs {
			cteDecls = addEntry(cteDecls, cteEntry(cte))
		}
		for _, ref := range c.Tables {
			fromEntries = addEntry(fromEntries, refEntry(ref, cteDecls))
		}
		for _, d := range c.Derived {
			fromEntries = addEntry(fromEntries, derivedEntry(d))
		}
	}

	for _, e := range cteDecls {
		entries = addEntry(entries, e)
	}
	for _, e := range fromEntries {
		entries = addEntry(entries, e)
	}
	return entries
}

// createdEntries collects temp tables and other created tables from
// statements completed before the cursor. Local temp tables (#name) are
// confined to the cursor's batch; global temps (##name) and regular
// tables cross batch separators. A DROP removes the entry from that
// point on.
func createdEntries(chunks []*parser.Chunk, offset, batch int) []TableEntry {
	var entries []TableEntry
	for _, c := range chunks {
		if !c.Span.IsValid() || c.Span.End.Offset >= offset {
			continue
		}
		for _, def := range c.Created {
			localTemp := strings.HasPrefix(def.Name, "#") &&
				!strings.HasPrefix(def.Name, "##")
			if localTemp && c.BatchIndex != batch {
				continue
			}
			kind := EntryTable
			if strings.HasPrefix(def.Name, "#") {
				kind = EntryTemp
			}
			entries = addEntry(entries, TableEntry{
				Kind:    kind,
				Name:    def.Name,
				Alias:   def.Name,
				Columns: def.Columns,
			})
		}
		for _, name := range c.Dropped {
			entries = removeEntry(entries, name)
		}
	}
	return entries
}

// chunkFor picks the statement chunk the cursor belongs to: the one
// containing the offset, or the last one ending before it as long as no
// statement boundary token sits between them (a cursor after `;` or GO
// starts a fresh statement with no inherited FROM scope).
func chunkFor(chunks []*parser.Chunk, tokens []token.Token, offset int) *parser.Chunk {
	var last *parser.Chunk
	for _, c := range chunks {
		if c.Contains(offset) {
			return c
		}
		if c.Span.IsValid() && c.Span.End.Offset < offset {
			last = c
		}
	}
	if last == nil {
		return nil
	}
	for _, t := range tokens {
		if t.Pos.Offset >= last.Span.End.Offset && t.End() <= offset {
			if t.Type == token.SEMICOLON || t.Type == token.GO {
				return nil
			}
		}
		if t.Pos.Offset > offset {
			break
		}
	}
	return last
}

// batchIndexAt counts the GO separators completed before the offset.
func batchIndexAt(tokens []token.Token, offset int) int {
	n := 0
	for _, t := range tokens {
		if t.Pos.Offset >= offset {
			break
		}
		if t.Type == token.GO && t.End() <= offset {
			n++
		}
	}
	return n
}

// addEntry appends e, replacing any existing entry bound to the same
// effective name. Replacement keeps declaration order stable while
// letting the nearest declaration win.
func addEntry(entries []TableEntry, e TableEntry) []TableEntry {
	name := e.EffectiveName()
	for i := range entries {
		if strings.EqualFold(entries[i].EffectiveName(), name) {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

// removeEntry deletes the entry bound to name, if present.
func removeEntry(entries []TableEntry, name string) []TableEntry {
	for i := range entries {
		if strings.EqualFold(entries[i].EffectiveName(), name) ||
			strings.EqualFold(entries[i].Name, name) {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

// refEntry converts a FROM-clause reference into a visible entry. An
// unqualified name matching a visible CTE binds to the CTE's projection
// instead of the real table: the CTE shadows it for the statement.
func refEntry(ref parser.TableReference, visible []TableEntry) TableEntry {
	if ref.Schema == "" && ref.Database == "" {
		for i := range visible {
			v := &visible[i]
			if v.Kind == EntryCTE && strings.EqualFold(v.Name, ref.Name) {
				return TableEntry{
					Kind:    EntryCTE,
					Name:    v.Name,
					Alias:   ref.Alias,
					Columns: v.Columns,
				}
			}
		}
	}
	return TableEntry{
		Kind:     EntryTable,
		Name:     ref.Name,
		Schema:   ref.Schema,
		Database: ref.Database,
		Alias:    ref.Alias,
	}
}

func cteEntry(cte *parser.CTEDefinition) TableEntry {
	return TableEntry{
		Kind:    EntryCTE,
		Name:    cte.Name,
		Alias:   cte.Name,
		Columns: cte.Columns(),
	}
}

func derivedEntry(d parser.DerivedTable) TableEntry {
	var cols []string
	if d.Body != nil {
		cols = d.Body.ProducedColumns
	}
	return TableEntry{
		Kind:    EntryDerived,
		Name:    d.Alias,
		Alias:   d.Alias,
		Columns: cols,
	}
}

// disambiguate resolves the dual interpretations a one- or two-part
// qualified name carries. When the first part binds to a visible entry
// the alias/column reading wins and the schema/table fields are
// cleared; otherwise the name is taken as schema-qualified.
func disambiguate(q *QualifiedName, visible []TableEntry) {
	if len(q.Parts) == 0 || len(q.Parts) > 2 {
		return
	}
	bound := false
	first := q.Parts[0]
	for i := range visible {
		e := &visible[i]
		if strings.EqualFold(e.EffectiveName(), first) ||
			strings.EqualFold(e.Name, first) {
			bound = true
			break
		}
	}
	if bound {
		q.Schema = ""
		q.Table = ""
		q.Database = ""
		if q.Alias == "" {
			q.Alias = first
		}
	} else {
		q.Alias = ""
		q.Column = ""
	}
}

// clause-detection scan bound; clauses do not usefully stretch further
// back than this many tokens.
const clauseScanLimit = 256

// detectClause classifies the clause the cursor sits in by scanning
// backward for the nearest clause keyword at paren depth zero. Balanced
// groups passed on the way are skipped whole.
func detectClause(tokens []token.Token, offset int) ClauseKind {
	i := indexBefore(tokens, offset)
	if j := tokenAt(tokens, offset); j >= 0 {
		i = j
	}
	depth := 0
	for steps := 0; i >= 0 && steps < clauseScanLimit; i, steps = i-1, steps+1 {
		t := tokens[i]
		switch {
		case t.Type == token.RPAREN:
			depth++
			continue
		case t.Type == token.LPAREN:
			if depth > 0 {
				depth--
			}
			continue
		case depth > 0:
			continue
		}

		switch t.Type {
		case token.SELECT:
			return ClauseSelectList
		case token.FROM, token.JOIN, token.APPLY, token.USING, token.INTO,
			token.UPDATE, token.DELETE, token.TABLE, token.MERGE,
			token.TRUNCATE, token.VIEW:
			return ClauseFrom
		case token.WHERE, token.HAVING, token.ON, token.AND, token.OR,
			token.BETWEEN, token.IN, token.LIKE, token.NOT, token.EXISTS,
			token.WHEN, token.THEN, token.ELSE, token.CASE, token.IS:
			return ClauseWhere
		case token.SET:
			return ClauseSet
		case token.VALUES:
			return ClauseValues
		case token.OUTPUT:
			return ClauseOutput
		case token.BY, token.GROUP, token.ORDER:
			return ClauseSelectList
		case token.DISTINCT, token.TOP, token.ALL:
			return ClauseBeforeFrom
		case token.EXEC, token.PROCEDURE:
			return ClauseExec
		case token.INSERT:
			return ClauseFrom
		case token.SEMICOLON, token.GO, token.WITH, token.AS,
			token.CREATE, token.DROP, token.ALTER, token.DECLARE:
			return ClauseUnknown
		}
	}
	return ClauseUnknown
}
