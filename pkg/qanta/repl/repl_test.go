package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`print(1);`, false},
		{`fun f() {`, true},
		{"fun f() {\n  return 1;\n}", false},
		{`print(`, true},
		{`1 +`, false},
		{`print(1 +`, true},
		{`print("unterminated`, true},
		{`print("{");`, false},
		{`/* still in a comment`, true},
		{`// { in a line comment`, false},
		{`}`, false},
		{`@`, false},
		{`"bad \q escape"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := needsMoreInput(tt.input); got != tt.want {
				t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFeed(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, Options{})

	lines := []string{
		"var greeting = \"hi\";",
		"fun shout(s) {",
		"  return upper(s) + \"!\";",
		"}",
		"print(shout(greeting));",
	}
	var runs int
	for _, line := range lines {
		_, ok, quit := r.Feed(line)
		if quit {
			t.Fatalf("Feed(%q) asked to quit", line)
		}
		if ok {
			runs++
		}
	}

	if runs != 3 {
		t.Errorf("ran %d inputs, want 3", runs)
	}
	if got := out.String(); got != "HI!\n" {
		t.Errorf("output = %q, want %q", got, "HI!\n")
	}
}

func TestFeedContinuationPrompt(t *testing.T) {
	r := New(&bytes.Buffer{}, Options{Prompt: "qanta> "})

	if r.prompt() != "qanta> " {
		t.Errorf("prompt = %q", r.prompt())
	}
	r.Feed("{")
	if r.prompt() != CONTINUATION_PROMPT {
		t.Errorf("prompt inside a block = %q", r.prompt())
	}
	source, ok, _ := r.Feed("}")
	if !ok || source != "{\n}" {
		t.Errorf("Feed returned %q, %v", source, ok)
	}
	if r.prompt() != "qanta> " {
		t.Errorf("prompt after block = %q", r.prompt())
	}
}

func TestFeedErrors(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, Options{})

	r.Feed("print(1 / 0);")
	if !strings.Contains(out.String(), "Runtime error") || !strings.Contains(out.String(), "division by zero") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	r.Feed("var = 1; var = 2;")
	if got := strings.Count(out.String(), "Parser error"); got != 2 {
		t.Errorf("reported %d parse errors, want 2: %q", got, out.String())
	}

	out.Reset()
	r.Feed("print(\"still works\");")
	if out.String() != "still works\n" {
		t.Errorf("output after errors = %q", out.String())
	}
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, Options{})

	r.Feed(":env")
	if !strings.Contains(out.String(), "(no user variables)") {
		t.Errorf(":env on a fresh session = %q", out.String())
	}

	r.Feed("var answer = 42;")
	out.Reset()
	r.Feed(":env")
	if got := out.String(); got != "  answer: number = 42\n" {
		t.Errorf(":env = %q", got)
	}

	out.Reset()
	r.Feed(":clear")
	r.Feed("print(answer);")
	if !strings.Contains(out.String(), "undefined variable 'answer'") {
		t.Errorf("after :clear = %q", out.String())
	}

	out.Reset()
	r.Feed(":nope")
	if !strings.Contains(out.String(), "Unknown command: :nope") {
		t.Errorf("unknown command = %q", out.String())
	}

	if _, _, quit := r.Feed("exit"); !quit {
		t.Error("exit did not quit")
	}
}

func TestComplete(t *testing.T) {
	r := New(&bytes.Buffer{}, Options{})
	r.Feed("var counter = 0;")

	tests := []struct {
		line string
		want []string
	}{
		{"cl", []string{"class", "clock"}},
		{"print(cou", []string{"print(counter"}},
		{"wh", []string{"while"}},
		{"", nil},
		{"print ", nil},
		{"print(", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := r.complete(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("complete(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestHistoryPath(t *testing.T) {
	r := New(&bytes.Buffer{}, Options{})
	if got := r.historyPath(); got != filepath.Join(os.TempDir(), ".qanta_history") {
		t.Errorf("default history path = %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	r = New(&bytes.Buffer{}, Options{HistoryFile: "~/.qanta_history"})
	if got := r.historyPath(); got != filepath.Join(home, ".qanta_history") {
		t.Errorf("expanded history path = %q", got)
	}
}
