package complete_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/complete"
	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInSubquery(t *testing.T) {
	tests := []struct {
		name string
		sql  string // cursor at end
		want bool
	}{
		{
			name: "top level select",
			sql:  "SELECT * FROM t WHERE id = 1",
			want: false,
		},
		{
			name: "inside where-in subquery",
			sql:  "SELECT * FROM t WHERE id IN (SELECT x FROM s",
			want: true,
		},
		{
			name: "function call is not a subquery",
			sql:  "SELECT AVG(price",
			want: false,
		},
		{
			name: "select inside function parens stays rejected",
			sql:  "SELECT * FROM t WHERE x = AVG(SELECT y",
			want: false,
		},
		{
			name: "cte body is not a subquery",
			sql:  "WITH c AS (SELECT x FROM t",
			want: false,
		},
		{
			name: "open paren without select",
			sql:  "SELECT * FROM t WHERE id IN (",
			want: false,
		},
		{
			name: "insert terminates the scan",
			sql:  "INSERT INTO t (a, b",
			want: false,
		},
		{
			name: "balanced group before cursor is skipped",
			sql:  "SELECT * FROM (SELECT a FROM b) x WHERE x.a = 1",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.sql)
			require.NotEmpty(t, tokens)
			got := complete.InSubquery(tokens, len(tokens)-1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubqueryBounds(t *testing.T) {
	t.Run("unterminated subquery extends to stream end", func(t *testing.T) {
		tokens := parser.Tokenize("SELECT * FROM t WHERE id IN (SELECT x FROM s")

		s, e, ok := complete.SubqueryBounds(tokens, len(tokens)-1)
		require.True(t, ok)
		assert.Equal(t, "SELECT", tokens[s].Literal)
		assert.Equal(t, len(tokens), e)
	})

	t.Run("terminated subquery stops at matching paren", func(t *testing.T) {
		sql := "SELECT * FROM t WHERE id IN (SELECT x FROM s) AND b = 2"
		tokens := parser.Tokenize(sql)

		// Cursor on the inner "x".
		idx := -1
		for i, tok := range tokens {
			if tok.Literal == "x" {
				idx = i
				break
			}
		}
		require.GreaterOrEqual(t, idx, 0)

		s, e, ok := complete.SubqueryBounds(tokens, idx)
		require.True(t, ok)
		assert.Equal(t, "SELECT", tokens[s].Literal)
		assert.Equal(t, ")", tokens[e].Literal)
	})

	t.Run("not in subquery", func(t *testing.T) {
		tokens := parser.Tokenize("SELECT * FROM t")
		_, _, ok := complete.SubqueryBounds(tokens, len(tokens)-1)
		assert.False(t, ok)
	})
}

func TestSubqueryTables(t *testing.T) {
	tokens := parser.Tokenize("SELECT * FROM t WHERE id IN (SELECT x FROM dbo.s ss WHERE ss.y = 1")
	refs := complete.SubqueryTables(tokens, len(tokens)-1)
	require.Len(t, refs, 1)
	assert.Equal(t, "s", refs[0].Name)
	assert.Equal(t, "dbo", refs[0].Schema)
	assert.Equal(t, "ss", refs[0].Alias)
}

func TestDetectSubquery(t *testing.T) {
	t.Run("reports membership and tables", func(t *testing.T) {
		sql := "SELECT * FROM Orders o WHERE o.total > (SELECT MAX(total) FROM OrderLines ol WHERE ol.oid = "
		tokens := parser.Tokenize(sql)
		in, refs := complete.DetectSubquery(tokens, len(sql))
		require.True(t, in)
		require.Len(t, refs, 1)
		assert.Equal(t, "OrderLines", refs[0].Name)
		assert.Equal(t, "ol", refs[0].Alias)
	})

	t.Run("top level returns nothing", func(t *testing.T) {
		sql := "SELECT * FROM Orders"
		tokens := parser.Tokenize(sql)
		in, refs := complete.DetectSubquery(tokens, len(sql))
		assert.False(t, in)
		assert.Nil(t, refs)
	})
}

// Deep nesting must terminate and produce a usable partial answer.
func TestNestedSubqueryTermination(t *testing.T) {
	sql := "SELECT * FROM " + strings.Repeat("(SELECT * FROM ", 50) + "base"
	tokens := parser.Tokenize(sql)

	assert.True(t, complete.InSubquery(tokens, len(tokens)-1))

	refs := complete.SubqueryTables(tokens, len(tokens)-1)
	require.Len(t, refs, 1)
	assert.Equal(t, "base", refs[0].Name)
}
