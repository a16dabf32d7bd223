// Package complete resolves the completion context for a cursor position
// in a SQL buffer. It answers two questions: which tables, CTEs, temp
// tables, and derived tables are visible at that point, and what kind of
// completion the surrounding tokens call for.
//
// The package is a pure function over its input. Every call tokenizes
// and parses the buffer from scratch; nothing is cached or shared, so
// concurrent calls are safe and identical input always yields an
// identical ScopeContext. Malformed SQL never produces an error, only a
// smaller visible set. The single surfaced error is PositionError for a
// cursor outside the text.
package complete

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/parser"
)

// TriggerKind classifies what kind of completion the cursor position
// calls for.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerTable
	TriggerColumn
	TriggerProcedure
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerTable:
		return "table"
	case TriggerColumn:
		return "column"
	case TriggerProcedure:
		return "procedure"
	}
	return "none"
}

// ClauseKind is the clause the cursor sits in, found by a bounded
// backward scan over the token stream.
type ClauseKind int

const (
	ClauseUnknown ClauseKind = iota
	ClauseBeforeFrom
	ClauseFrom
	ClauseWhere
	ClauseSelectList
	ClauseSet
	ClauseValues
	ClauseOutput
	ClauseExec
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseBeforeFrom:
		return "before-FROM"
	case ClauseFrom:
		return "FROM"
	case ClauseWhere:
		return "WHERE"
	case ClauseSelectList:
		return "SELECT-list"
	case ClauseSet:
		return "SET"
	case ClauseValues:
		return "VALUES"
	case ClauseOutput:
		return "OUTPUT"
	case ClauseExec:
		return "EXEC"
	}
	return "unknown"
}

// EntryKind tells what a visible-table entry is backed by.
type EntryKind int

const (
	EntryTable EntryKind = iota
	EntryCTE
	EntryDerived
	EntryTemp
)

// TableEntry is one member of the visible-tables set: a real table, a
// CTE or derived table acting as a pseudo-table, or a temp table. For
// CTE, derived, and temp entries Columns holds the known projection;
// for real tables it is empty and the caller's metadata source supplies
// the columns.
type TableEntry struct {
	Kind     EntryKind
	Name     string
	Schema   string
	Database string
	Alias    string
	Columns  []string
}

// EffectiveName is the name the entry binds to in qualified references.
func (e *TableEntry) EffectiveName() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// ScopeContext is the answer for one cursor position. It is built fresh
// per request; any buffer edit invalidates it.
type ScopeContext struct {
	VisibleTables []TableEntry
	Trigger       TriggerKind
	Qualifier     *QualifiedName
	Clause        ClauseKind
	InSubquery    bool

	// FreshDot is true when the cursor immediately follows a just-typed
	// dot, as opposed to resting inside a partial identifier after one.
	// Callers use it to decide between popping completion open and
	// filtering an already-open list.
	FreshDot bool
}

// Lookup finds the visible entry bound to name (alias or table name,
// case-insensitive), or nil.
func (s *ScopeContext) Lookup(name string) *TableEntry {
	for i := range s.VisibleTables {
		e := &s.VisibleTables[i]
		if strings.EqualFold(e.EffectiveName(), name) ||
			strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

// Columns returns the known projection of the entry bound to name, or
// nil when the entry is unknown or is a real table whose columns live
// in external metadata.
func (s *ScopeContext) Columns(name string) []string {
	if e := s.Lookup(name); e != nil {
		return e.Columns
	}
	return nil
}

// defaultWindowSize is the token window handed to the qualified-name
// resolver. Chains longer than this do not occur in practice.
const defaultWindowSize = 10

// Options configures a Resolver.
type Options struct {
	// WindowSize bounds the backward token window for qualified-name
	// parsing. Zero means the default of 10.
	WindowSize int
}

// Resolver turns a buffer and cursor position into a ScopeContext.
// The zero value is usable.
type Resolver struct {
	opts Options
}

// NewResolver returns a Resolver with the given options.
func NewResolver(opts Options) *Resolver {
	if opts.WindowSize <= 0 {
		opts.WindowSize = defaultWindowSize
	}
	return &Resolver{opts: opts}
}

// Resolve is shorthand for NewResolver with defaults.
func Resolve(sql string, line, col int) (*ScopeContext, error) {
	return NewResolver(Options{}).Resolve(sql, line, col)
}

// Resolve computes the ScopeContext for the 1-indexed cursor position.
// The only error returned is a *PositionError for a cursor outside the
// text; every malformed-SQL condition degrades to a smaller context.
func (r *Resolver) Resolve(sql string, line, col int) (*ScopeContext, error) {
	window := r.opts.WindowSize
	if window <= 0 {
		window = defaultWindowSize
	}

	offset, err := lineColOffset(sql, line, col)
	if err != nil {
		return nil, err
	}

	tokens := parser.Tokenize(sql)
	chunks := parser.ParseTokens(tokens)

	sc := &ScopeContext{
		Clause: detectClause(tokens, offset),
	}
	sc.VisibleTables = visibleTables(tokens, chunks, offset)

	inSub, subTables := DetectSubquery(tokens, offset)
	sc.InSubquery = inSub
	for _, ref := range subTables {
		sc.VisibleTables = addEntry(sc.VisibleTables, refEntry(ref, sc.VisibleTables))
	}

	qualifier, fresh := DetectDotTrigger(tokens, offset, window)
	sc.FreshDot = fresh
	if !qualifier.IsEmpty() {
		q := qualifier
		disambiguate(&q, sc.VisibleTables)
		sc.Qualifier = &q
	}
	sc.Trigger = triggerFor(sc)
	return sc, nil
}

// triggerFor derives the trigger kind from the clause and the
// disambiguated qualifier.
func triggerFor(sc *ScopeContext) TriggerKind {
	if sc.Clause == ClauseExec {
		return TriggerProcedure
	}
	if q := sc.Qualifier; q != nil {
		switch {
		case q.Column != "":
			return TriggerColumn
		case q.Alias != "" && q.Schema == "" && q.Table == "":
			// Bound to a visible alias; the next part is a column.
			return TriggerColumn
		case q.Table != "" && q.HasTrailingDot:
			return TriggerColumn
		default:
			return TriggerTable
		}
	}
	switch sc.Clause {
	case ClauseFrom:
		return TriggerTable
	case ClauseWhere, ClauseSelectList, ClauseSet, ClauseValues,
		ClauseOutput, ClauseBeforeFrom:
		return TriggerColumn
	}
	return TriggerNone
}
