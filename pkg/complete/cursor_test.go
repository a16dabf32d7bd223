package complete

import (
	"testing"

	"github.com/leapstack-labs/sqlscope/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineColOffset(t *testing.T) {
	src := "SELECT 1\nFROM t\n"

	tests := []struct {
		name      string
		line, col int
		want      int
		wantErr   bool
	}{
		{"start of buffer", 1, 1, 0, false},
		{"mid first line", 1, 8, 7, false},
		{"end of first line", 1, 9, 8, false},
		{"start of second line", 2, 1, 9, false},
		{"past line end", 1, 20, 0, true},
		{"past last line", 5, 1, 0, true},
		{"zero column", 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lineColOffset(src, tt.line, tt.col)
			if tt.wantErr {
				require.Error(t, err)
				var posErr *PositionError
				assert.ErrorAs(t, err, &posErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexBeforeAndTokenAt(t *testing.T) {
	tokens := parser.Tokenize("SELECT name FROM t")
	// offsets: SELECT [0,6) name [7,11) FROM [12,16) t [17,18)

	assert.Equal(t, -1, indexBefore(tokens, 0))
	assert.Equal(t, 0, indexBefore(tokens, 6))
	assert.Equal(t, 0, indexBefore(tokens, 7))
	assert.Equal(t, 1, indexBefore(tokens, 11))
	assert.Equal(t, 3, indexBefore(tokens, 18))

	assert.Equal(t, -1, tokenAt(tokens, 0))
	assert.Equal(t, 0, tokenAt(tokens, 3))
	assert.Equal(t, -1, tokenAt(tokens, 6), "token end boundary is not inside")
	assert.Equal(t, 1, tokenAt(tokens, 9))
}

// The backward FROM scan is the fallback when a subquery span cannot be
// usefully reparsed; it must read name [AS] alias chains on its own.
func TestExtractTablesBackward(t *testing.T) {
	tests := []struct {
		name string
		sql  string // cursor at last token
		want []parser.TableReference
	}{
		{
			name: "single table",
			sql:  "SELECT x FROM Orders WHERE id",
			want: []parser.TableReference{
				{Name: "Orders", Alias: "Orders"},
			},
		},
		{
			name: "aliased and joined",
			sql:  "SELECT x FROM dbo.Orders AS o JOIN Lines l ON o.id = l.oid WHERE x",
			want: []parser.TableReference{
				{Name: "Orders", Schema: "dbo", Alias: "o"},
				{Name: "Lines", Alias: "l"},
			},
		},
		{
			name: "comma separated",
			sql:  "SELECT x FROM a, b bb WHERE y",
			want: []parser.TableReference{
				{Name: "a", Alias: "a"},
				{Name: "b", Alias: "bb"},
			},
		},
		{
			name: "no from clause",
			sql:  "SELECT x WHERE y",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.Tokenize(tt.sql)
			got := extractTablesBackward(tokens, len(tokens)-1)
			assert.Equal(t, tt.want, got)
		})
	}
}
