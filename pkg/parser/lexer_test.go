package parser_test

import (
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/leapstack-labs/sqlscope/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBasicSelect(t *testing.T) {
	toks := parser.Tokenize("SELECT id, name FROM dbo.Employees WHERE id = 42")

	want := []struct {
		typ token.Type
		lit string
	}{
		{token.SELECT, "SELECT"},
		{token.IDENT, "id"},
		{token.COMMA, ","},
		{token.IDENT, "name"},
		{token.FROM, "FROM"},
		{token.IDENT, "dbo"},
		{token.DOT, "."},
		{token.IDENT, "Employees"},
		{token.WHERE, "WHERE"},
		{token.IDENT, "id"},
		{token.EQ, "="},
		{token.NUMBER, "42"},
	}

	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w.typ, toks[i].Type, "token %d type", i)
		assert.Equal(t, w.lit, toks[i].Literal, "token %d literal", i)
	}
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []token.Type
	}{
		{
			name:  "bracket identifier keeps brackets",
			input: "[My Table]",
			types: []token.Type{token.BracketIdent},
		},
		{
			name:  "double quoted identifier",
			input: `"My Table"`,
			types: []token.Type{token.BracketIdent},
		},
		{
			name:  "string literal",
			input: "'it''s'",
			types: []token.Type{token.STRING},
		},
		{
			name:  "national string literal",
			input: "N'héllo'",
			types: []token.Type{token.STRING},
		},
		{
			name:  "local temp table name",
			input: "#tmp",
			types: []token.Type{token.IDENT},
		},
		{
			name:  "global temp table name",
			input: "##sessions",
			types: []token.Type{token.IDENT},
		},
		{
			name:  "variable",
			input: "@name",
			types: []token.Type{token.VARIABLE},
		},
		{
			name:  "system variable",
			input: "@@rowcount",
			types: []token.Type{token.VARIABLE},
		},
		{
			name:  "comparison operators",
			input: "= <> != < > <= >=",
			types: []token.Type{token.EQ, token.NE, token.NE, token.LT, token.GT, token.LE, token.GE},
		},
		{
			name:  "batch separator keyword",
			input: "go",
			types: []token.Type{token.GO},
		},
		{
			name:  "scientific number",
			input: "1.5e3",
			types: []token.Type{token.NUMBER},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := parser.Tokenize(tt.input)
			require.Len(t, toks, len(tt.types))
			for i, typ := range tt.types {
				assert.Equal(t, typ, toks[i].Type, "token %d", i)
			}
		})
	}
}

func TestTokenizeLiteralsRetainDelimiters(t *testing.T) {
	toks := parser.Tokenize("[My Table] 'text' #tmp")
	require.Len(t, toks, 3)
	assert.Equal(t, "[My Table]", toks[0].Literal)
	assert.Equal(t, "'text'", toks[1].Literal)
	assert.Equal(t, "#tmp", toks[2].Literal)
}

func TestTokenizePositions(t *testing.T) {
	toks := parser.Tokenize("SELECT x\nFROM t")
	require.Len(t, toks, 4)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, 6, toks[0].End())

	assert.Equal(t, token.Position{Line: 1, Column: 8, Offset: 7}, toks[1].Pos)
	assert.Equal(t, 8, toks[1].End())

	assert.Equal(t, token.Position{Line: 2, Column: 1, Offset: 9}, toks[2].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 6, Offset: 14}, toks[3].Pos)
}

func TestTokenizeOperatorEndOffsets(t *testing.T) {
	toks := parser.Tokenize("a <= b")
	require.Len(t, toks, 3)
	assert.Equal(t, 2, toks[1].Pos.Offset)
	assert.Equal(t, 4, toks[1].End())
}

// Unterminated literals must run to end of input, never error or panic.
func TestTokenizeUnterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   token.Type
		lit   string
	}{
		{"unterminated string", "SELECT 'abc", token.STRING, "'abc"},
		{"unterminated bracket", "SELECT [My Ta", token.BracketIdent, "[My Ta"},
		{"unterminated quote", `SELECT "col`, token.BracketIdent, `"col`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := parser.Tokenize(tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.typ, toks[1].Type)
			assert.Equal(t, tt.lit, toks[1].Literal)
			assert.Equal(t, len(tt.input), toks[1].End())
		})
	}
}

func TestTokenizeCollectsComments(t *testing.T) {
	l := parser.NewLexer("SELECT 1 -- trailing\n/* block */ FROM t")

	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		toks = append(toks, tok)
	}

	require.Len(t, toks, 4) // SELECT 1 FROM t
	require.Len(t, l.Comments, 2)
	assert.Equal(t, token.LineComment, l.Comments[0].Kind)
	assert.Equal(t, "-- trailing", l.Comments[0].Text)
	assert.Equal(t, token.BlockComment, l.Comments[1].Kind)
	assert.Equal(t, "/* block */", l.Comments[1].Text)
}
