package parser

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// ChunkKind identifies the statement kind a chunk summarizes.
type ChunkKind string

// Chunk kinds.
const (
	ChunkUnknown ChunkKind = ""
	ChunkSelect  ChunkKind = "SELECT"
	ChunkInsert  ChunkKind = "INSERT"
	ChunkUpdate  ChunkKind = "UPDATE"
	ChunkDelete  ChunkKind = "DELETE"
	ChunkMerge   ChunkKind = "MERGE"
	ChunkCreate  ChunkKind = "CREATE"
	ChunkDrop    ChunkKind = "DROP"
	ChunkDeclare ChunkKind = "DECLARE"
	ChunkExec    ChunkKind = "EXEC"
)

// TableReference is one FROM/JOIN-clause entry.
// Alias always carries a value: it defaults to Name when the SQL declares
// no alias, so alias-keyed lookups still resolve unaliased tables.
type TableReference struct {
	Name     string
	Schema   string // optional
	Database string // optional
	Alias    string
}

// Qualified returns the dotted database.schema.name form, omitting
// unset parts.
func (t *TableReference) Qualified() string {
	var parts []string
	if t.Database != "" {
		parts = append(parts, t.Database)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}

// IsTemp returns true for session temp tables (#local or ##global).
func (t *TableReference) IsTemp() bool {
	return strings.HasPrefix(t.Name, "#")
}

// CTEDefinition is one WITH entry: name [(col,...)] AS (body).
type CTEDefinition struct {
	Name            string
	DeclaredColumns []string // empty means infer from Body
	Body            *Chunk
	Recursive       bool // body references its own name
}

// Columns returns the CTE's exposed column list: the declared list when
// present, otherwise the body's produced columns.
func (c *CTEDefinition) Columns() []string {
	if len(c.DeclaredColumns) > 0 {
		return c.DeclaredColumns
	}
	if c.Body != nil {
		return c.Body.ProducedColumns
	}
	return nil
}

// DerivedTable is a subquery in FROM with its alias.
type DerivedTable struct {
	Alias string
	Body  *Chunk
}

// TableDefinition records a CREATE TABLE target and its declared columns.
type TableDefinition struct {
	Name    string
	Columns []string
}

// Chunk is the parsed summary of one statement or one subquery span.
// Nested chunks (CTE bodies, derived tables, expression subqueries) are
// owned exclusively by their parent; there are no parent back-references,
// so traversal carries the enclosing context explicitly.
type Chunk struct {
	Kind            ChunkKind
	Tables          []TableReference
	CTEs            []*CTEDefinition
	Derived         []DerivedTable
	ProducedColumns []string // SELECT-list names/aliases; "" for unnamed exprs
	InsertColumns   []string // INSERT target column list, if declared
	Subchunks       []*Chunk // expression subqueries (IN, EXISTS, scalar)
	Created         []TableDefinition
	Dropped         []string
	BatchIndex      int // 0-based batch number (incremented at each GO)
	Span            token.Span
}

// Contains reports whether the byte offset falls inside this chunk's span.
func (c *Chunk) Contains(offset int) bool {
	return c.Span.Contains(offset)
}

// children returns all directly nested chunks, in source order groups.
func (c *Chunk) children() []*Chunk {
	var out []*Chunk
	for _, cte := range c.CTEs {
		if cte.Body != nil {
			out = append(out, cte.Body)
		}
	}
	for _, d := range c.Derived {
		if d.Body != nil {
			out = append(out, d.Body)
		}
	}
	out = append(out, c.Subchunks...)
	return out
}

// Path returns the chain of chunks containing the offset, outermost
// first. Returns nil if the offset lies outside the chunk.
func (c *Chunk) Path(offset int) []*Chunk {
	if !c.Contains(offset) {
		return nil
	}
	path := []*Chunk{c}
	node := c
	for {
		var next *Chunk
		for _, child := range node.children() {
			if child.Contains(offset) {
				next = child
				break
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		node = next
	}
}

// CTEOwning returns the CTE definition whose body chain contains the
// given chunk, or nil when the chunk is not inside any CTE body.
func (c *Chunk) CTEOwning(target *Chunk) *CTEDefinition {
	for _, cte := range c.CTEs {
		if cte.Body == nil {
			continue
		}
		if cte.Body == target || chunkContainsChunk(cte.Body, target) {
			return cte
		}
	}
	return nil
}

func chunkContainsChunk(root, target *Chunk) bool {
	for _, child := range root.children() {
		if child == target || chunkContainsChunk(child, target) {
			return true
		}
	}
	return false
}
