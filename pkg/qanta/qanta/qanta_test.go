package qanta

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/evaluator"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"arithmetic", `print(2 + 3 * 4);`, "14\n"},
		{"counters", `
fun makeCounter() {
  var count = 0;
  fun inc() { count = count + 1; return count; }
  return inc;
}
var a = makeCounter();
var b = makeCounter();
a();
print(a());
print(b());`, "2\n1\n"},
		{"natives", `print(upper("qanta") + " " + str(len("four")));`, "QANTA 4\n"},
		{"classes", `
class Greeter {
  init(name) { this.name = name; }
  greet() { return "hello " + this.name; }
}
print(Greeter("world").greet());`, "hello world\n"},
		{"no output", `var x = 1;`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewBufferedLogger()
			if err := Run(tt.input, Options{Logger: logger}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := logger.String(); got != tt.expected {
				t.Errorf("output = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		static bool
		output string
	}{
		{"lex error", `print("unterminated);`, "LEX-0002", true, ""},
		{"resolve error", `print(1); return 2;`, "RESOLVE-0003", true, ""},
		{"runtime error", `print(1); print(1 / 0); print(2);`, "OP-0001", false, "1\n"},
		{"arity", `fun add(a, b) { return a + b; } add(1);`, "ARITY-0001", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewBufferedLogger()
			err := Run(tt.input, Options{Logger: logger, Filename: "test.qnt"})

			var qerr *qerrors.QantaError
			if !errors.As(err, &qerr) {
				t.Fatalf("expected *QantaError, got %T: %v", err, err)
			}
			if qerr.Code != tt.code {
				t.Errorf("code = %s, want %s", qerr.Code, tt.code)
			}
			if qerr.File != "test.qnt" {
				t.Errorf("file = %q, want test.qnt", qerr.File)
			}
			if IsStatic(err) != tt.static {
				t.Errorf("IsStatic = %v, want %v", IsStatic(err), tt.static)
			}
			if got := logger.String(); got != tt.output {
				t.Errorf("output = %q, want %q", got, tt.output)
			}
		})
	}
}

func TestRunReportsAllParseErrors(t *testing.T) {
	err := Run("var a = ;\nvar b = 2;\nvar = 3;", Options{Logger: NullLogger(), Filename: "bad.qnt"})

	var list qerrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %T: %v", err, err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(list), list)
	}
	for _, e := range list {
		if e.File != "bad.qnt" {
			t.Errorf("error %q has file %q", e.Message, e.File)
		}
	}
	if !IsStatic(err) {
		t.Error("parse errors should be static")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{`print(1 / 0);`, true},
		{`undefinedFunction();`, true},
		{`var a = 1; { var a = a; }`, false},
		{`class A < A {}`, false},
		{`break;`, false},
		{`1 +;`, false},
		{`"open`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := Check(tt.input)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSessionKeepsGlobals(t *testing.T) {
	logger := NewBufferedLogger()
	session := NewSession(Options{Logger: logger})

	inputs := []string{
		`var total = 0;`,
		`fun add(n) { total = total + n; return total; }`,
		`add(2);`,
		`print(add(3);`, // parse error: nothing runs
		`{ var step = 5; print(add(step)); }`,
		`print(1 / 0);`,
		`print(total);`,
	}

	var errs int
	for _, input := range inputs {
		if err := session.Run(input); err != nil {
			errs++
		}
	}

	if errs != 2 {
		t.Errorf("got %d errors, want 2", errs)
	}
	if got := logger.Lines(); !reflect.DeepEqual(got, []string{"7", "7"}) {
		t.Errorf("output = %v, want [7 7]", got)
	}

	ids := session.Identifiers()
	for _, name := range []string{"add", "total", "print"} {
		found := false
		for _, id := range ids {
			if id == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Identifiers() is missing %s", name)
		}
	}
}

func TestOptions(t *testing.T) {
	t.Run("max call depth", func(t *testing.T) {
		err := Run(`fun f() { f(); } f();`, Options{Logger: NullLogger(), MaxCallDepth: 50})
		var qerr *qerrors.QantaError
		if !errors.As(err, &qerr) || qerr.Code != "STATE-0001" {
			t.Fatalf("expected STATE-0001, got %v", err)
		}
		if !strings.Contains(qerr.Message, "50") {
			t.Errorf("message %q does not name the limit", qerr.Message)
		}
	})

	t.Run("disabled natives", func(t *testing.T) {
		err := Run(`clock();`, Options{Logger: NullLogger(), DisabledNatives: []string{"clock"}})
		var qerr *qerrors.QantaError
		if !errors.As(err, &qerr) || qerr.Code != "UNDEF-0001" {
			t.Fatalf("expected UNDEF-0001, got %v", err)
		}
	})

	t.Run("extra natives", func(t *testing.T) {
		logger := NewBufferedLogger()
		double := &evaluator.Native{Name: "double", ArgsLen: 1, Fn: func(args []evaluator.Object) (evaluator.Object, error) {
			n := args[0].(*evaluator.Number)
			return &evaluator.Number{Value: n.Value * 2}, nil
		}}
		if err := Run(`print(double(21));`, Options{Logger: logger, Natives: []*evaluator.Native{double}}); err != nil {
			t.Fatal(err)
		}
		if logger.String() != "42\n" {
			t.Errorf("output = %q", logger.String())
		}
	})

	t.Run("locale", func(t *testing.T) {
		logger := NewBufferedLogger()
		if err := Run(`print(formatNumber(1234.5));`, Options{Logger: logger, Locale: "de"}); err != nil {
			t.Fatal(err)
		}
		if logger.String() != "1.234,5\n" {
			t.Errorf("output = %q", logger.String())
		}
	})

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Run(`print(1);`, Options{Logger: NullLogger(), Verbose: &buf}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[RUN] tokens=6 statements=1 locals=0") {
			t.Errorf("verbose output = %q", buf.String())
		}
	})

	t.Run("scope trace", func(t *testing.T) {
		var reads []string
		trace := func(name string, tok lexer.Token, resolved, hops int) {
			reads = append(reads, name)
		}
		err := Run(`var a = 1; { var b = a; print(b); }`, Options{Logger: NullLogger(), ScopeTrace: trace})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(reads, []string{"a", "print", "b"}) {
			t.Errorf("reads = %v", reads)
		}
	})
}

func TestBufferedLogger(t *testing.T) {
	l := NewBufferedLogger()
	l.Log("a", 1)
	l.LogLine("b")
	l.Log("tail")

	if got := l.String(); got != "a 1b\ntail" {
		t.Errorf("String() = %q", got)
	}
	if got := l.Lines(); !reflect.DeepEqual(got, []string{"a 1b"}) {
		t.Errorf("Lines() = %v", got)
	}

	l.Reset()
	if l.String() != "" {
		t.Errorf("String() after Reset = %q", l.String())
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := WriterLogger(&buf)
	l.LogLine("x", 2)
	l.Log("y")
	if buf.String() != "x 2\ny" {
		t.Errorf("output = %q", buf.String())
	}
}
