// Package token defines the lexical token types for the completion engine.
//
// The token set is deliberately permissive: it covers the statement and
// clause keywords the scope resolver needs to orient itself, and treats
// everything else as plain identifiers. Unknown words never fail the lexer.
package token

import "fmt"

// Type represents the type of a lexical token.
type Type int32

// Token types. Keywords occupy a contiguous range so IsKeyword is a
// simple bounds check.
const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals and names
	IDENT        // employees
	BracketIdent // [My Table], brackets retained in Literal
	NUMBER       // 123, 45.67, 1e10
	STRING       // 'hello', N'hello'
	VARIABLE     // @name

	// Operators and punctuation
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Keywords (alphabetical)
	ALL
	ALTER
	AND
	APPLY
	AS
	BETWEEN
	BY
	CASE
	CREATE
	CROSS
	DECLARE
	DELETE
	DISTINCT
	DROP
	ELSE
	END
	EXCEPT
	EXEC
	EXISTS
	FROM
	FULL
	FUNCTION
	GO
	GROUP
	HAVING
	IN
	INNER
	INSERT
	INTERSECT
	INTO
	IS
	JOIN
	LEFT
	LIKE
	MERGE
	NOT
	NULL
	ON
	OR
	ORDER
	OUTER
	OUTPUT
	PROCEDURE
	RECURSIVE
	RIGHT
	SELECT
	SET
	TABLE
	THEN
	TOP
	TRUNCATE
	UNION
	UPDATE
	USING
	VALUES
	VIEW
	WHEN
	WHERE
	WITH
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:        "IDENT",
	BracketIdent: "BRACKET_IDENT",
	NUMBER:       "NUMBER",
	STRING:       "STRING",
	VARIABLE:     "VARIABLE",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	EQ:        "=",
	NE:        "!=",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",

	ALL:       "ALL",
	ALTER:     "ALTER",
	AND:       "AND",
	APPLY:     "APPLY",
	AS:        "AS",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	CREATE:    "CREATE",
	CROSS:     "CROSS",
	DECLARE:   "DECLARE",
	DELETE:    "DELETE",
	DISTINCT:  "DISTINCT",
	DROP:      "DROP",
	ELSE:      "ELSE",
	END:       "END",
	EXCEPT:    "EXCEPT",
	EXEC:      "EXEC",
	EXISTS:    "EXISTS",
	FROM:      "FROM",
	FULL:      "FULL",
	FUNCTION:  "FUNCTION",
	GO:        "GO",
	GROUP:     "GROUP",
	HAVING:    "HAVING",
	IN:        "IN",
	INNER:     "INNER",
	INSERT:    "INSERT",
	INTERSECT: "INTERSECT",
	INTO:      "INTO",
	IS:        "IS",
	JOIN:      "JOIN",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	MERGE:     "MERGE",
	NOT:       "NOT",
	NULL:      "NULL",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	OUTPUT:    "OUTPUT",
	PROCEDURE: "PROCEDURE",
	RECURSIVE: "RECURSIVE",
	RIGHT:     "RIGHT",
	SELECT:    "SELECT",
	SET:       "SET",
	TABLE:     "TABLE",
	THEN:      "THEN",
	TOP:       "TOP",
	TRUNCATE:  "TRUNCATE",
	UNION:     "UNION",
	UPDATE:    "UPDATE",
	USING:     "USING",
	VALUES:    "VALUES",
	VIEW:      "VIEW",
	WHEN:      "WHEN",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]Type{
	"all":       ALL,
	"alter":     ALTER,
	"and":       AND,
	"apply":     APPLY,
	"as":        AS,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"create":    CREATE,
	"cross":     CROSS,
	"declare":   DECLARE,
	"delete":    DELETE,
	"distinct":  DISTINCT,
	"drop":      DROP,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"exec":      EXEC,
	"execute":   EXEC,
	"exists":    EXISTS,
	"from":      FROM,
	"full":      FULL,
	"function":  FUNCTION,
	"go":        GO,
	"group":     GROUP,
	"having":    HAVING,
	"in":        IN,
	"inner":     INNER,
	"insert":    INSERT,
	"intersect": INTERSECT,
	"into":      INTO,
	"is":        IS,
	"join":      JOIN,
	"left":      LEFT,
	"like":      LIKE,
	"merge":     MERGE,
	"not":       NOT,
	"null":      NULL,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"output":    OUTPUT,
	"proc":      PROCEDURE,
	"procedure": PROCEDURE,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"select":    SELECT,
	"set":       SET,
	"table":     TABLE,
	"then":      THEN,
	"top":       TOP,
	"truncate":  TRUNCATE,
	"union":     UNION,
	"update":    UPDATE,
	"using":     USING,
	"values":    VALUES,
	"view":      VIEW,
	"when":      WHEN,
	"where":     WHERE,
	"with":      WITH,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t Type) bool {
	return t >= ALL && t <= WITH
}

// IsOperator returns true if the token type is an arithmetic or
// comparison operator.
func IsOperator(t Type) bool {
	return t >= PLUS && t <= GE
}

// IsComparison returns true for comparison operators (=, !=, <, >, <=, >=).
func IsComparison(t Type) bool {
	return t >= EQ && t <= GE
}

// IsIdent returns true for plain and bracket-quoted identifiers.
func IsIdent(t Type) bool {
	return t == IDENT || t == BracketIdent
}

// IsStatementStart returns true if the token type begins a statement.
func IsStatementStart(t Type) bool {
	switch t {
	case SELECT, INSERT, UPDATE, DELETE, MERGE, CREATE, DROP, ALTER,
		TRUNCATE, DECLARE, EXEC, WITH:
		return true
	}
	return false
}

// IsDML returns true for the data-modification statement kinds that
// terminate a backward subquery scan.
func IsDML(t Type) bool {
	switch t {
	case INSERT, UPDATE, DELETE, MERGE:
		return true
	}
	return false
}

// Token represents a lexical token with position information.
// Literal holds the raw lexeme: bracket-quoted identifiers keep their
// brackets so consumers can tell them apart from plain identifiers.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
	EndOff  int // byte offset just past the lexeme
}

// End returns the byte offset just past the token's lexeme.
func (t Token) End() int {
	return t.EndOff
}
