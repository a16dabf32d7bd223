package parser

import (
	"strings"
	"unicode"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// Lexer tokenizes SQL input. It never fails: malformed input (unterminated
// strings or brackets, stray characters) produces best-effort tokens so the
// completion layers above always have something to scan.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected during lexing (skipped from the token stream)
	Comments []*token.Comment
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		tok.EndOff = pos.Offset
		return tok
	case '+':
		tok = l.newToken(token.PLUS, "+")
	case '-':
		tok = l.newToken(token.MINUS, "-")
	case '*':
		tok = l.newToken(token.STAR, "*")
	case '/':
		tok = l.newToken(token.SLASH, "/")
	case '%':
		tok = l.newToken(token.PERCENT, "%")
	case '=':
		tok = l.newToken(token.EQ, "=")
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<=", Pos: pos, EndOff: pos.Offset + 2}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "<>", Pos: pos, EndOff: pos.Offset + 2}
		default:
			tok = l.newToken(token.LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">=", Pos: pos, EndOff: pos.Offset + 2}
		} else {
			tok = l.newToken(token.GT, ">")
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "!=", Pos: pos, EndOff: pos.Offset + 2}
		} else {
			tok = l.newToken(token.ILLEGAL, string(l.ch))
		}
	case '.':
		tok = l.newToken(token.DOT, ".")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case ';':
		tok = l.newToken(token.SEMICOLON, ";")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '[':
		tok.Type = token.BracketIdent
		tok.Literal = l.readBracketIdentifier()
		tok.Pos = pos
		tok.EndOff = l.pos
		return tok
	case '\'':
		tok.Type = token.STRING
		tok.Literal = l.readString()
		tok.Pos = pos
		tok.EndOff = l.pos
		return tok
	case '"':
		// Quoted identifier (ANSI style); quotes retained like brackets
		tok.Type = token.BracketIdent
		tok.Literal = l.readDoubleQuoted()
		tok.Pos = pos
		tok.EndOff = l.pos
		return tok
	case '@':
		tok.Type = token.VARIABLE
		tok.Literal = l.readVariable()
		tok.Pos = pos
		tok.EndOff = l.pos
		return tok
	case '#':
		// Temp-table name (#local or ##global); the marker stays in the
		// literal so the scope resolver can apply batch lifetime rules.
		tok.Type = token.IDENT
		tok.Literal = l.readTempIdentifier()
		tok.Pos = pos
		tok.EndOff = l.pos
		return tok
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			// N'...' national string literal
			if (l.ch == 'N' || l.ch == 'n') && l.peekChar() == '\'' {
				l.readChar() // skip N
				l.readString()
				tok.Type = token.STRING
				tok.Literal = l.input[pos.Offset:l.pos]
				tok.Pos = pos
				tok.EndOff = l.pos
				return tok
			}
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(strings.ToLower(tok.Literal))
			tok.Pos = pos
			tok.EndOff = l.pos
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			tok.Pos = pos
			tok.EndOff = l.pos
			return tok
		default:
			tok = l.newToken(token.ILLEGAL, string(l.ch))
		}
	}

	l.readChar()
	return tok
}

// newToken creates a new fixed-width token.
func (l *Lexer) newToken(tokenType token.Type, literal string) token.Token {
	pos := l.currentPos()
	return token.Token{
		Type:    tokenType,
		Literal: literal,
		Pos:     pos,
		EndOff:  pos.Offset + len(literal),
	}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment. An unterminated block
// comment runs to end of input.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			break
		}
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a single-quoted string literal, quotes retained.
// Doubled single quotes escape: 'it''s'. An unterminated string runs to
// end of input rather than failing.
func (l *Lexer) readString() string {
	start := l.pos
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				l.readChar()
				l.readChar()
			} else {
				l.readChar() // skip closing quote
				break
			}
		} else {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

// readDoubleQuoted reads a double-quoted identifier, quotes retained.
func (l *Lexer) readDoubleQuoted() string {
	start := l.pos
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar()
				l.readChar()
			} else {
				l.readChar() // skip closing quote
				break
			}
		} else {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

// readBracketIdentifier reads a [bracketed] identifier, brackets retained.
// An unterminated bracket runs to end of input.
func (l *Lexer) readBracketIdentifier() string {
	start := l.pos
	l.readChar() // skip '['

	for l.ch != 0 && l.ch != ']' {
		l.readChar()
	}
	if l.ch == ']' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readVariable reads an @variable or @@system variable.
func (l *Lexer) readVariable() string {
	start := l.pos
	l.readChar() // skip '@'
	if l.ch == '@' {
		l.readChar()
	}
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readTempIdentifier reads a #temp or ##global table name.
func (l *Lexer) readTempIdentifier() string {
	start := l.pos
	l.readChar() // skip '#'
	if l.ch == '#' {
		l.readChar()
	}
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter.
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, excluding the final EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
