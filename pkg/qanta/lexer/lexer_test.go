package lexer

import (
	"strings"
	"testing"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
)

func TestNextToken(t *testing.T) {
	input := `var five = 5;
var ten = 10.5;

fun add(x, y) {
  return x + y;
}

var result = add(five, ten);
!-/ *5;
5 < 10 >= 5 <= 1 > 0;
10 == 10 != 9 % 2;

class B < A { init() { this.x = super.y; } }
while (true) { break; continue; }
for (;;) {} if (a and b or nil) {} else {}
"foobar"
"foo bar"
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{VAR, "var"},
		{IDENT, "five"},
		{ASSIGN, "="},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{VAR, "var"},
		{IDENT, "ten"},
		{ASSIGN, "="},
		{NUMBER, "10.5"},
		{SEMICOLON, ";"},
		{FUNCTION, "fun"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COMMA, ","},
		{IDENT, "y"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{IDENT, "x"},
		{PLUS, "+"},
		{IDENT, "y"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{VAR, "var"},
		{IDENT, "result"},
		{ASSIGN, "="},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "five"},
		{COMMA, ","},
		{IDENT, "ten"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{BANG, "!"},
		{MINUS, "-"},
		{SLASH, "/"},
		{ASTERISK, "*"},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{NUMBER, "5"},
		{LT, "<"},
		{NUMBER, "10"},
		{GTE, ">="},
		{NUMBER, "5"},
		{LTE, "<="},
		{NUMBER, "1"},
		{GT, ">"},
		{NUMBER, "0"},
		{SEMICOLON, ";"},
		{NUMBER, "10"},
		{EQ, "=="},
		{NUMBER, "10"},
		{NOT_EQ, "!="},
		{NUMBER, "9"},
		{PERCENT, "%"},
		{NUMBER, "2"},
		{SEMICOLON, ";"},
		{CLASS, "class"},
		{IDENT, "B"},
		{LT, "<"},
		{IDENT, "A"},
		{LBRACE, "{"},
		{IDENT, "init"},
		{LPAREN, "("},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{THIS, "this"},
		{DOT, "."},
		{IDENT, "x"},
		{ASSIGN, "="},
		{SUPER, "super"},
		{DOT, "."},
		{IDENT, "y"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{RBRACE, "}"},
		{WHILE, "while"},
		{LPAREN, "("},
		{TRUE, "true"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{BREAK, "break"},
		{SEMICOLON, ";"},
		{CONTINUE, "continue"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{FOR, "for"},
		{LPAREN, "("},
		{SEMICOLON, ";"},
		{SEMICOLON, ";"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RBRACE, "}"},
		{IF, "if"},
		{LPAREN, "("},
		{IDENT, "a"},
		{AND, "and"},
		{IDENT, "b"},
		{OR, "or"},
		{NIL, "nil"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{RBRACE, "}"},
		{STRING, `"foobar"`},
		{STRING, `"foo bar"`},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLiteralValues(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{`42`, 42.0},
		{`3.25`, 3.25},
		{`"plain"`, "plain"},
		{`"tab\there"`, "tab\there"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"quote\"inside"`, `quote"inside`},
		{`"back\\slash"`, `back\slash`},
		{`"cr\r"`, "cr\r"},
		{`"nul\0"`, "nul\x00"},
		{"\"multi\nline\"", "multi\nline"},
		{`"héllo"`, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(tokens) != 2 {
				t.Fatalf("expected 2 tokens, got %d", len(tokens))
			}
			if tokens[0].Value != tt.want {
				t.Errorf("Value = %#v, want %#v", tokens[0].Value, tt.want)
			}
			if tokens[0].Literal != tt.input {
				t.Errorf("Literal = %q, want raw source %q", tokens[0].Literal, tt.input)
			}
		})
	}
}

func TestTrailingDotIsNotPartOfNumber(t *testing.T) {
	tokens, err := Tokenize("1.foo")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []TokenType{NUMBER, DOT, IDENT, EOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("tokens[%d] = %s, want %s", i, tokens[i].Type, tt)
		}
	}
}

func TestComments(t *testing.T) {
	input := `// leading comment
a /* inline */ b
/* spans
   lines */ c // trailing`

	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Literal)
	}
	want := "a b c "
	if strings.Join(got, " ") != want {
		t.Errorf("tokens = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "var x = 1;\n  print x;"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	tests := []struct {
		index  int
		line   int
		column int
	}{
		{0, 1, 1},  // var
		{1, 1, 5},  // x
		{3, 1, 9},  // 1
		{5, 2, 3},  // print
		{6, 2, 9},  // x
		{7, 2, 10}, // ;
	}

	for _, tt := range tests {
		tok := tokens[tt.index]
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("token %q at %d:%d, want %d:%d",
				tok.Literal, tok.Line, tok.Column, tt.line, tt.column)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		line   int
		column int
	}{
		{"unexpected character", "var a = 1;\nvar b = @;", "LEX-0001", 2, 9},
		{"unterminated string", `print "oops;`, "LEX-0002", 1, 7},
		{"unterminated string at escape", `"abc\`, "LEX-0002", 1, 1},
		{"unterminated block comment", "a /* never closed", "LEX-0003", 1, 3},
		{"invalid escape", `"bad \q"`, "LEX-0004", 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("expected error, got tokens %v", tokens)
			}
			if tokens != nil {
				t.Errorf("expected no partial output, got %d tokens", len(tokens))
			}
			qerr, ok := err.(*qerrors.QantaError)
			if !ok {
				t.Fatalf("expected *QantaError, got %T", err)
			}
			if qerr.Code != tt.code {
				t.Errorf("Code = %s, want %s", qerr.Code, tt.code)
			}
			if qerr.Class != qerrors.ClassLex {
				t.Errorf("Class = %s, want lex", qerr.Class)
			}
			if qerr.Line != tt.line || qerr.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", qerr.Line, qerr.Column, tt.line, tt.column)
			}
		})
	}
}

func TestRetokenizeRoundTrip(t *testing.T) {
	programs := []string{
		`var a = 1; var b = "two\n"; print a + b;`,
		`fun fib(n) { if (n <= 1) return n; return fib(n - 2) + fib(n - 1); }`,
		`class Counter < Base { init(n) { this.n = n; } inc() { this.n = this.n + 1; return this; } }`,
		"for (var i = 0; i < 10; i = i + 1) { /* skip */ if (i % 2 == 0) continue; print i; } // done",
		`var s = "a \"quoted\" \\ string\t"; print !(s != nil) and 1.5 >= -2 or false;`,
		"while(x>=1){x=x-1;}",
	}

	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			first, err := Tokenize(src)
			if err != nil {
				t.Fatalf("Tokenize error: %v", err)
			}

			lexemes := make([]string, 0, len(first))
			for _, tok := range first {
				lexemes = append(lexemes, tok.Literal)
			}

			second, err := Tokenize(strings.Join(lexemes, " "))
			if err != nil {
				t.Fatalf("re-Tokenize error: %v", err)
			}

			if len(first) != len(second) {
				t.Fatalf("token count changed: %d -> %d", len(first), len(second))
			}
			for i := range first {
				if first[i].Type != second[i].Type {
					t.Errorf("token %d type %s -> %s", i, first[i].Type, second[i].Type)
				}
				if first[i].Literal != second[i].Literal {
					t.Errorf("token %d literal %q -> %q", i, first[i].Literal, second[i].Literal)
				}
				if first[i].Value != second[i].Value {
					t.Errorf("token %d value %#v -> %#v", i, first[i].Value, second[i].Value)
				}
			}
		})
	}
}

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"fun", FUNCTION},
		{"class", CLASS},
		{"continue", CONTINUE},
		{"funny", IDENT},
		{"_private", IDENT},
	}

	for _, tt := range tests {
		if got := LookupIdent(tt.ident); got != tt.want {
			t.Errorf("LookupIdent(%q) = %s, want %s", tt.ident, got, tt.want)
		}
	}
}
