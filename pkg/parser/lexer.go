package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/transql/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
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

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	comments := l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := token.Token{Pos: pos, Leading: comments}

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		return tok
	case '+':
		tok.Type, tok.Literal = token.PLUS, "+"
	case '-':
		tok.Type, tok.Literal = token.MINUS, "-"
	case '*':
		tok.Type, tok.Literal = token.STAR, "*"
	case '/':
		tok.Type, tok.Literal = token.SLASH, "/"
	case '%':
		tok.Type, tok.Literal = token.PERCENT, "%"
	case '=':
		tok.Type, tok.Literal = token.EQ, "="
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	case '(':
		tok.Type, tok.Literal = token.LPAREN, "("
	case ')':
		tok.Type, tok.Literal = token.RPAREN, ")"
	case ';':
		tok.Type, tok.Literal = token.SEMICOLON, ";"
	case '|':
		if l.peekChar() != '|' {
			tok.Type, tok.Literal = token.ILLEGAL, "|"
			break
		}
		l.readChar()
		tok.Type, tok.Literal = token.DPIPE, "||"
	case ':':
		if l.peekChar() != ':' {
			tok.Type, tok.Literal = token.ILLEGAL, ":"
			break
		}
		l.readChar()
		tok.Type, tok.Literal = token.DCOLON, "::"
	case '!':
		if l.peekChar() != '=' {
			tok.Type, tok.Literal = token.ILLEGAL, "!"
			break
		}
		l.readChar()
		tok.Type, tok.Literal = token.NE, "!="
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = token.LE, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Literal = token.NE, "<>"
		default:
			tok.Type, tok.Literal = token.LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.GE, ">="
		} else {
			tok.Type, tok.Literal = token.GT, ">"
		}
	case '.':
		if isDigit(l.peekChar()) {
			tok.Type, tok.Literal = token.NUMBER, l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = token.DOT, "."
	case '\'':
		lit, ok := l.readString()
		if !ok {
			tok.Type, tok.Literal = token.ILLEGAL, ErrUnterminatedString
			return tok
		}
		tok.Type, tok.Literal = token.STRING, lit
		return tok
	case '"', '`':
		lit, ok := l.readQuotedIdentifier(l.ch)
		if !ok {
			tok.Type, tok.Literal = token.ILLEGAL, ErrUnterminatedIdent
			return tok
		}
		if !utf8.ValidString(lit) {
			tok.Type, tok.Literal = token.ILLEGAL, ErrInvalidUTF8
			return tok
		}
		tok.Type, tok.Literal, tok.Quoted = token.IDENT, lit, true
		return tok
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			if !utf8.ValidString(tok.Literal) {
				tok.Type, tok.Literal = token.ILLEGAL, ErrInvalidUTF8
				return tok
			}
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		case isDigit(l.ch):
			tok.Type, tok.Literal = token.NUMBER, l.readNumber()
			return tok
		default:
			tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
		}
	}

	l.readChar()
	return tok
}

// skipWhitespaceAndComments skips whitespace and returns the -- line and
// /* */ block comments it passed over.
func (l *Lexer) skipWhitespaceAndComments() []*token.Comment {
	var comments []*token.Comment
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			comments = append(comments, l.readLineComment())
		case l.ch == '/' && l.peekChar() == '*':
			comments = append(comments, l.readBlockComment())
		default:
			return comments
		}
	}
}

func (l *Lexer) readLineComment() *token.Comment {
	pos, start := l.currentPos(), l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	text := strings.TrimRight(l.input[start:l.pos], " \t\r")
	return &token.Comment{Kind: token.LineComment, Text: text, Pos: pos}
}

// readBlockComment reads a /* */ comment. An unterminated comment runs to
// the end of input and is closed in the returned text.
func (l *Lexer) readBlockComment() *token.Comment {
	pos, start := l.currentPos(), l.pos
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return &token.Comment{Kind: token.BlockComment, Text: l.input[start:l.pos], Pos: pos}
		}
		l.readChar()
	}
	return &token.Comment{Kind: token.BlockComment, Text: l.input[start:] + " */", Pos: pos}
}

// readString reads a single-quoted string literal and returns its raw body.
// Doubled quotes and backslash escapes are kept as written so the literal
// can be re-emitted byte for byte.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // skip opening quote
	start := l.pos
	for l.ch != 0 {
		switch {
		case l.ch == '\\' && l.peekChar() != 0:
			l.readChar()
			l.readChar()
		case l.ch == '\'' && l.peekChar() == '\'':
			l.readChar()
			l.readChar()
		case l.ch == '\'':
			lit := l.input[start:l.pos]
			l.readChar() // skip closing quote
			return lit, true
		default:
			l.readChar()
		}
	}
	return "", false
}

// readQuotedIdentifier reads a "..." or `...` identifier.
// A doubled quote is an escape: "col""name" -> col"name
func (l *Lexer) readQuotedIdentifier(quote byte) (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		if l.ch == quote {
			if l.peekChar() != quote {
				l.readChar() // skip closing quote
				return result.String(), true
			}
			l.readChar()
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return "", false
}

// readIdentifier reads an unquoted identifier. Redshift allows $ after the
// first character.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
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
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
