package complete_test

import (
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/complete"
	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Part-count law: the number of parts and the trailing dot fully
// determine which fields are populated, ambiguous cases populate both
// interpretations.
func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  complete.QualifiedName
	}{
		{
			name:  "empty window",
			input: "",
			want:  complete.QualifiedName{},
		},
		{
			name:  "one part",
			input: "emp",
			want: complete.QualifiedName{
				Alias: "emp",
				Parts: []string{"emp"},
			},
		},
		{
			name:  "one part trailing dot is schema and alias",
			input: "dbo.",
			want: complete.QualifiedName{
				Schema:         "dbo",
				Alias:          "dbo",
				Parts:          []string{"dbo"},
				HasTrailingDot: true,
			},
		},
		{
			name:  "two parts populate both interpretations",
			input: "dbo.Employees",
			want: complete.QualifiedName{
				Schema: "dbo",
				Table:  "Employees",
				Alias:  "dbo",
				Column: "Employees",
				Parts:  []string{"dbo", "Employees"},
			},
		},
		{
			name:  "two parts trailing dot",
			input: "Reporting.dbo.",
			want: complete.QualifiedName{
				Database:       "Reporting",
				Schema:         "dbo",
				Parts:          []string{"Reporting", "dbo"},
				HasTrailingDot: true,
			},
		},
		{
			name:  "three parts",
			input: "Reporting.dbo.Facts",
			want: complete.QualifiedName{
				Database: "Reporting",
				Schema:   "dbo",
				Table:    "Facts",
				Parts:    []string{"Reporting", "dbo", "Facts"},
			},
		},
		{
			name:  "four parts",
			input: "Reporting.dbo.Facts.Amount",
			want: complete.QualifiedName{
				Database: "Reporting",
				Schema:   "dbo",
				Table:    "Facts",
				Column:   "Amount",
				Parts:    []string{"Reporting", "dbo", "Facts", "Amount"},
			},
		},
		{
			name:  "extra leading parts silently dropped",
			input: "srv.Reporting.dbo.Facts.Amount",
			want: complete.QualifiedName{
				Database: "Reporting",
				Schema:   "dbo",
				Table:    "Facts",
				Column:   "Amount",
				Parts:    []string{"srv", "Reporting", "dbo", "Facts", "Amount"},
			},
		},
		{
			name:  "brackets stripped",
			input: "[My Table].[My Col]",
			want: complete.QualifiedName{
				Schema: "My Table",
				Table:  "My Col",
				Alias:  "My Table",
				Column: "My Col",
				Parts:  []string{"My Table", "My Col"},
			},
		},
		{
			name:  "walk stops at non-identifier",
			input: "x + dbo.Emp",
			want: complete.QualifiedName{
				Schema: "dbo",
				Table:  "Emp",
				Alias:  "dbo",
				Column: "Emp",
				Parts:  []string{"dbo", "Emp"},
			},
		},
		{
			name:  "keyword stops the walk",
			input: "FROM emp",
			want: complete.QualifiedName{
				Alias: "emp",
				Parts: []string{"emp"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := complete.ParseQualifiedName(parser.Tokenize(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQualifiedNameString(t *testing.T) {
	q := complete.ParseQualifiedName(parser.Tokenize("dbo.Employees."))
	assert.Equal(t, "dbo.Employees.", q.String())
	assert.True(t, q.HasTrailingDot)
	assert.Equal(t, []string{"dbo", "Employees"}, q.Parts)
}

func TestDetectDotTrigger(t *testing.T) {
	tests := []struct {
		name      string
		sql       string // cursor at end of string
		wantParts []string
		wantFresh bool
	}{
		{
			name:      "fresh dot after alias",
			sql:       "SELECT e.",
			wantParts: []string{"e"},
			wantFresh: true,
		},
		{
			name:      "partial identifier after dot",
			sql:       "SELECT e.Na",
			wantParts: []string{"e"},
			wantFresh: false,
		},
		{
			name:      "fresh dot after chain",
			sql:       "SELECT * FROM Reporting.dbo.",
			wantParts: []string{"Reporting", "dbo"},
			wantFresh: true,
		},
		{
			name:      "no dot context",
			sql:       "SELECT name",
			wantParts: nil,
			wantFresh: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.sql)
			q, fresh := complete.DetectDotTrigger(tokens, len(tt.sql), 10)
			assert.Equal(t, tt.wantParts, q.Parts)
			assert.Equal(t, tt.wantFresh, fresh)
		})
	}
}

func TestReferenceBeforeDot(t *testing.T) {
	tests := []struct {
		name string
		sql  string // cursor at end
		want string
	}{
		{"alias dot", "SELECT e.", "e"},
		{"alias dot partial column", "SELECT e.FirstNa", "e"},
		{"chain before dot", "SELECT a.b.c.", "a.b.c"},
		{"no dot", "SELECT name", ""},
		{"dot with nothing before", "SELECT .", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.sql)
			got := complete.ReferenceBeforeDot(tokens, len(tt.sql), 10)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparisonOperand(t *testing.T) {
	t.Run("simple column", func(t *testing.T) {
		sql := "SELECT * FROM t WHERE status = "
		q := complete.ComparisonOperand(parser.Tokenize(sql), len(sql), 10)
		require.Equal(t, []string{"status"}, q.Parts)
		assert.Equal(t, "status", q.Alias)
	})

	t.Run("qualified column", func(t *testing.T) {
		sql := "SELECT * FROM t WHERE t.total >= "
		q := complete.ComparisonOperand(parser.Tokenize(sql), len(sql), 10)
		require.Equal(t, []string{"t", "total"}, q.Parts)
		assert.Equal(t, "t", q.Alias)
		assert.Equal(t, "total", q.Column)
	})

	t.Run("keyword blocks the scan", func(t *testing.T) {
		sql := "SELECT * FROM t WHERE "
		q := complete.ComparisonOperand(parser.Tokenize(sql), len(sql), 10)
		assert.True(t, q.IsEmpty())
	})

	t.Run("operator out of reach", func(t *testing.T) {
		sql := "x = a b c d e f"
		q := complete.ComparisonOperand(parser.Tokenize(sql), len(sql), 10)
		assert.True(t, q.IsEmpty())
	})
}
