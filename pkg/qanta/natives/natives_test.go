package natives

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/evaluator"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
	"github.com/sambeau/qanta/pkg/qanta/parser"
	"github.com/sambeau/qanta/pkg/qanta/resolver"
)

type recordLogger struct {
	lines []string
}

func (r *recordLogger) Log(values ...any) {
	r.lines = append(r.lines, fmt.Sprint(values...))
}

func (r *recordLogger) LogLine(values ...any) {
	r.Log(values...)
}

func lookup(t *testing.T, table Table, name string) *evaluator.Native {
	t.Helper()
	for _, native := range table {
		if native.Name == name {
			return native
		}
	}
	t.Fatalf("native %s not in table", name)
	return nil
}

func call(t *testing.T, opts Options, name string, args ...evaluator.Object) (evaluator.Object, error) {
	t.Helper()
	native := lookup(t, Default(opts), name)
	if len(args) != native.Arity() {
		t.Fatalf("%s takes %d arguments, test passed %d", name, native.Arity(), len(args))
	}
	return native.Fn(args)
}

func str(s string) evaluator.Object  { return &evaluator.String{Value: s} }
func num(n float64) evaluator.Object { return &evaluator.Number{Value: n} }

func TestDefaultTable(t *testing.T) {
	want := []string{"print", "clock", "str", "len", "num", "upper", "lower", "formatNumber", "parseDate", "formatDate"}
	if got := Default(Options{}).Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	got := Default(Options{Disabled: []string{"clock", "parseDate", "nonexistent"}}).Names()
	want = []string{"print", "str", "len", "num", "upper", "lower", "formatNumber", "formatDate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("with disabled natives: Names() = %v, want %v", got, want)
	}
}

func TestPrintUsesLogger(t *testing.T) {
	logger := &recordLogger{}
	result, err := call(t, Options{Logger: logger}, "print", num(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != evaluator.NIL {
		t.Errorf("print returned %s, want nil", result.Inspect())
	}
	if !reflect.DeepEqual(logger.lines, []string{"14"}) {
		t.Errorf("logged %v, want [14]", logger.lines)
	}
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 0, 0, 1, int(500*time.Millisecond), time.UTC)
	result, err := call(t, Options{Now: func() time.Time { return fixed }}, "clock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Inspect(); got != "1710460801.5" {
		t.Errorf("clock() = %s, want 1710460801.5", got)
	}
}

func TestValueNatives(t *testing.T) {
	tests := []struct {
		name     string
		native   string
		arg      evaluator.Object
		expected string
	}{
		{"str of number", "str", num(2.5), "2.5"},
		{"str of nil", "str", evaluator.NIL, "nil"},
		{"str of bool", "str", evaluator.TRUE, "true"},
		{"len ascii", "len", str("hello"), "5"},
		{"len counts runes", "len", str("héllo"), "5"},
		{"len empty", "len", str(""), "0"},
		{"num integer", "num", str("42"), "42"},
		{"num padded", "num", str("  3.5 "), "3.5"},
		{"num negative", "num", str("-7"), "-7"},
		{"num invalid", "num", str("abc"), "nil"},
		{"num of number", "num", num(9), "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := call(t, Options{}, tt.native, tt.arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.Inspect(); got != tt.expected {
				t.Errorf("%s(%s) = %q, want %q", tt.native, tt.arg.Inspect(), got, tt.expected)
			}
		})
	}
}

func TestLocaleNatives(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		native   string
		args     []evaluator.Object
		expected string
	}{
		{"upper", "", "upper", []evaluator.Object{str("hello")}, "HELLO"},
		{"lower", "", "lower", []evaluator.Object{str("HeLLo")}, "hello"},
		{"upper turkish dotted i", "tr", "upper", []evaluator.Object{str("i")}, "İ"},
		{"formatNumber en", "en-US", "formatNumber", []evaluator.Object{num(1234567.5)}, "1,234,567.5"},
		{"formatNumber de", "de", "formatNumber", []evaluator.Object{num(1234567.5)}, "1.234.567,5"},
		{"formatNumber underscore locale", "de_DE", "formatNumber", []evaluator.Object{num(1000)}, "1.000"},
		{"parseDate iso", "", "parseDate", []evaluator.Object{str("2024-03-15")}, "1710460800"},
		{"parseDate month first", "en-US", "parseDate", []evaluator.Object{str("03/04/2024")}, "1709510400"},
		{"parseDate day first", "en-GB", "parseDate", []evaluator.Object{str("03/04/2024")}, "1712102400"},
		{"parseDate invalid", "", "parseDate", []evaluator.Object{str("not a date")}, "nil"},
		{"formatDate layout", "", "formatDate", []evaluator.Object{num(1710460800), str("2006-01-02")}, "2024-03-15"},
		{"formatDate long en", "en-US", "formatDate", []evaluator.Object{num(1710460800), str("long")}, "March 15, 2024"},
		{"formatDate full en", "en-US", "formatDate", []evaluator.Object{num(1710460800), str("full")}, "Friday, March 15, 2024"},
		{"formatDate long de", "de", "formatDate", []evaluator.Object{num(1710460800), str("long")}, "15 März 2024"},
		{"formatDate short gb", "en-GB", "formatDate", []evaluator.Object{num(1710460800), str("short")}, "2024-03-15"},
		{"bad locale falls back", "!!", "formatNumber", []evaluator.Object{num(1000)}, "1,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := call(t, Options{Locale: tt.locale}, tt.native, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.Inspect(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTypeMisuse(t *testing.T) {
	tests := []struct {
		native  string
		args    []evaluator.Object
		message string
	}{
		{"len", []evaluator.Object{num(1)}, "len expected a string, got number"},
		{"num", []evaluator.Object{evaluator.NIL}, "num expected a string or number, got nil"},
		{"upper", []evaluator.Object{evaluator.TRUE}, "upper expected a string, got boolean"},
		{"lower", []evaluator.Object{num(1)}, "lower expected a string, got number"},
		{"formatNumber", []evaluator.Object{str("1")}, "formatNumber expected a number, got string"},
		{"parseDate", []evaluator.Object{num(1)}, "parseDate expected a string, got number"},
		{"formatDate", []evaluator.Object{str("x"), str("long")}, "formatDate expected a number, got string"},
		{"formatDate", []evaluator.Object{num(0), num(1)}, "formatDate expected a string, got number"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			_, err := call(t, Options{}, tt.native, tt.args...)
			var qerr *qerrors.QantaError
			if !errors.As(err, &qerr) {
				t.Fatalf("expected *QantaError, got %v", err)
			}
			if qerr.Code != "TYPE-0007" {
				t.Errorf("code = %s, want TYPE-0007", qerr.Code)
			}
			if qerr.Message != tt.message {
				t.Errorf("message = %q, want %q", qerr.Message, tt.message)
			}
		})
	}
}

func TestNativesInPrograms(t *testing.T) {
	input := `var n = num("41") + 1;
print(str(n) + "!");
print(len(upper("abc")));
len(n);`

	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	locals, err := resolver.Resolve(stmts)
	if err != nil {
		t.Fatal(err)
	}

	logger := &recordLogger{}
	err = evaluator.Interpret(stmts, locals, evaluator.NewGlobals(Default(Options{Logger: logger})))

	if !reflect.DeepEqual(logger.lines, []string{"42!", "3"}) {
		t.Errorf("output = %v", logger.lines)
	}
	var qerr *qerrors.QantaError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *QantaError, got %v", err)
	}
	if qerr.Line != 4 || qerr.Column != 4 {
		t.Errorf("error at %d:%d, want 4:4", qerr.Line, qerr.Column)
	}
}
