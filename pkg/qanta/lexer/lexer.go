package lexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	NUMBER // 1343456, 3.14159
	STRING // "foobar"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }

	// Keywords
	AND      // "and"
	CLASS    // "class"
	ELSE     // "else"
	FALSE    // "false"
	FOR      // "for"
	FUNCTION // "fun"
	IF       // "if"
	NIL      // "nil"
	OR       // "or"
	RETURN   // "return"
	SUPER    // "super"
	THIS     // "this"
	TRUE     // "true"
	VAR      // "var"
	WHILE    // "while"
	BREAK    // "break"
	CONTINUE // "continue"
)

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	ASSIGN:    "ASSIGN",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	BANG:      "BANG",
	ASTERISK:  "ASTERISK",
	SLASH:     "SLASH",
	PERCENT:   "PERCENT",
	LT:        "LT",
	GT:        "GT",
	LTE:       "LTE",
	GTE:       "GTE",
	EQ:        "EQ",
	NOT_EQ:    "NOT_EQ",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	DOT:       "DOT",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	AND:       "AND",
	CLASS:     "CLASS",
	ELSE:      "ELSE",
	FALSE:     "FALSE",
	FOR:       "FOR",
	FUNCTION:  "FUNCTION",
	IF:        "IF",
	NIL:       "NIL",
	OR:        "OR",
	RETURN:    "RETURN",
	SUPER:     "SUPER",
	THIS:      "THIS",
	TRUE:      "TRUE",
	VAR:       "VAR",
	WHILE:     "WHILE",
	BREAK:     "BREAK",
	CONTINUE:  "CONTINUE",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string // exact source text of the token
	Value   any    // float64 for NUMBER, decoded string for STRING
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"and":      AND,
	"class":    CLASS,
	"else":     ELSE,
	"false":    FALSE,
	"for":      FOR,
	"fun":      FUNCTION,
	"if":       IF,
	"nil":      NIL,
	"or":       OR,
	"return":   RETURN,
	"super":    SUPER,
	"this":     THIS,
	"true":     TRUE,
	"var":      VAR,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word := range keywords {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune
	chSize       int  // byte size of current character
	line         int  // current line number
	column       int  // current column number
	err          *qerrors.QantaError
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole source and returns its tokens, ending with EOF.
// Scanning stops at the first lexical error; no partial output is returned.
func Tokenize(source string) ([]Token, error) {
	l := New(source)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, l.Err()
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// Err returns the error that produced the last ILLEGAL token, if any.
func (l *Lexer) Err() *qerrors.QantaError {
	return l.err
}

// readChar reads the next character and advances position.
// ASCII takes a fast path; other input is decoded as UTF-8 so identifiers
// may contain Unicode letters.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]

	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size

	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// atEOF reports whether the whole input has been consumed.
func (l *Lexer) atEOF() bool {
	return l.chSize == 0
}

// NextToken scans the input and returns the next token. On a lexical
// error it returns an ILLEGAL token and records the error (see Err).
func (l *Lexer) NextToken() Token {
	if l.err != nil {
		return Token{Type: ILLEGAL, Literal: l.err.Message, Line: l.err.Line, Column: l.err.Column}
	}

	if !l.skipWhitespaceAndComments() {
		return l.illegal()
	}

	if l.atEOF() {
		return Token{Type: EOF, Literal: "", Line: l.line, Column: l.column + 1}
	}

	line, col := l.line, l.column
	var tok Token

	switch l.ch {
	case '=':
		tok = l.twoCharToken('=', EQ, ASSIGN)
	case '!':
		tok = l.twoCharToken('=', NOT_EQ, BANG)
	case '<':
		tok = l.twoCharToken('=', LTE, LT)
	case '>':
		tok = l.twoCharToken('=', GTE, GT)
	case '+':
		tok = newToken(PLUS, l.ch, line, col)
	case '-':
		tok = newToken(MINUS, l.ch, line, col)
	case '*':
		tok = newToken(ASTERISK, l.ch, line, col)
	case '/':
		tok = newToken(SLASH, l.ch, line, col)
	case '%':
		tok = newToken(PERCENT, l.ch, line, col)
	case ',':
		tok = newToken(COMMA, l.ch, line, col)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, col)
	case '.':
		tok = newToken(DOT, l.ch, line, col)
	case '(':
		tok = newToken(LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(RPAREN, l.ch, line, col)
	case '{':
		tok = newToken(LBRACE, l.ch, line, col)
	case '}':
		tok = newToken(RBRACE, l.ch, line, col)
	case '"':
		return l.readString()
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isLetterRune(l.chRune) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: col}
		}
		l.err = qerrors.NewWithPosition("LEX-0001", line, col, map[string]any{"Char": string(l.chRune)})
		return l.illegal()
	}

	l.readChar()
	return tok
}

// twoCharToken implements maximal munch for the operators that may be
// followed by a second character.
func (l *Lexer) twoCharToken(next byte, long, short TokenType) Token {
	line, col := l.line, l.column
	if l.peekChar() == next {
		ch := l.ch
		l.readChar()
		return Token{Type: long, Literal: string(ch) + string(l.ch), Line: line, Column: col}
	}
	return newToken(short, l.ch, line, col)
}

func (l *Lexer) illegal() Token {
	return Token{Type: ILLEGAL, Literal: l.err.Message, Line: l.err.Line, Column: l.err.Column}
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// skipWhitespaceAndComments consumes whitespace, line comments and block
// comments. It returns false if a block comment is left open.
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			line, col := l.line, l.column
			l.readChar() // '/'
			l.readChar() // '*'
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.atEOF() {
					l.err = qerrors.NewWithPosition("LEX-0003", line, col, nil)
					return false
				}
				l.readChar()
			}
			l.readChar() // '*'
			l.readChar() // '/'
		default:
			return true
		}
	}
}

// readIdentifier reads letters, digits and underscores
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetterRune(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or decimal literal. A '.' belongs to the
// number only when a digit follows it, so `1.` lexes as NUMBER DOT.
func (l *Lexer) readNumber() Token {
	line, col := l.line, l.column
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[position:l.position]
	value, _ := strconv.ParseFloat(literal, 64)
	return Token{Type: NUMBER, Literal: literal, Value: value, Line: line, Column: col}
}

// readString reads a double-quoted string, decoding escape sequences into
// Value while keeping the raw source text in Literal.
func (l *Lexer) readString() Token {
	line, col := l.line, l.column
	start := l.position
	var out strings.Builder

	l.readChar() // opening quote
	for l.ch != '"' {
		if l.atEOF() {
			l.err = qerrors.NewWithPosition("LEX-0002", line, col, nil)
			return l.illegal()
		}
		if l.ch == '\\' {
			escLine, escCol := l.line, l.column
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '0':
				out.WriteByte(0)
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				if l.atEOF() {
					l.err = qerrors.NewWithPosition("LEX-0002", line, col, nil)
					return l.illegal()
				}
				l.err = qerrors.NewWithPosition("LEX-0004", escLine, escCol, map[string]any{"Char": string(l.chRune)})
				return l.illegal()
			}
			l.readChar()
			continue
		}
		out.WriteString(l.input[l.position : l.position+l.chSize])
		l.readChar()
	}
	l.readChar() // closing quote

	return Token{
		Type:    STRING,
		Literal: l.input[start:l.position],
		Value:   out.String(),
		Line:    line,
		Column:  col,
	}
}

func isLetterRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
