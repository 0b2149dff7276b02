// Package repl implements the interactive Qanta prompt.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/evaluator"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
	"github.com/sambeau/qanta/pkg/qanta/qanta"
)

const (
	PROMPT              = "> "
	CONTINUATION_PROMPT = ". "
)

const LOGO = `
 ▄▀▄ ▄▀▄ █▄ █ ▀█▀ ▄▀▄
 ▀▄█ █▀█ █ ▀█  █  █▀█`

// Options configures a REPL.
type Options struct {
	Version string

	// Prompt replaces PROMPT when set.
	Prompt string

	// HistoryFile is where line history is kept between sessions. Empty
	// means a file in the system temp directory. A leading "~/" expands to
	// the home directory.
	HistoryFile string

	// Session configures the interpreter. A nil Logger writes program
	// output to the REPL's output.
	Session qanta.Options
}

// REPL evaluates one complete input at a time against a persistent
// session. Start drives it from a terminal.
type REPL struct {
	out     io.Writer
	opts    Options
	session *qanta.Session
	buffer  strings.Builder
}

// New creates a REPL writing to out.
func New(out io.Writer, opts Options) *REPL {
	if opts.Session.Logger == nil {
		opts.Session.Logger = qanta.WriterLogger(out)
	}
	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}
	return &REPL{out: out, opts: opts, session: qanta.NewSession(opts.Session)}
}

// Start runs the REPL with line editing, history and tab completion until
// the user exits.
func Start(out io.Writer, opts Options) error {
	r := New(out, opts)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(r.complete)

	historyFile := r.historyPath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, LOGO)
	if r.opts.Version != "" {
		fmt.Fprintln(out, " v", r.opts.Version)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if r.buffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				}
				r.buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		source, ok, quit := r.Feed(input)
		if quit {
			return nil
		}
		if ok {
			line.AppendHistory(source)
		}
	}
}

func (r *REPL) prompt() string {
	if r.buffer.Len() > 0 {
		return CONTINUATION_PROMPT
	}
	return r.opts.Prompt
}

// Feed accepts one line of input. Once the buffered lines form a complete
// input it is run and returned with ok set. quit reports an exit request.
func (r *REPL) Feed(input string) (source string, ok bool, quit bool) {
	trimmed := strings.TrimSpace(input)

	if r.buffer.Len() == 0 {
		switch {
		case trimmed == "":
			return "", false, false
		case trimmed == "exit" || trimmed == "quit":
			return "", false, true
		case strings.HasPrefix(trimmed, ":"):
			r.command(trimmed)
			return "", false, false
		}
	} else {
		r.buffer.WriteByte('\n')
	}
	r.buffer.WriteString(input)

	source = r.buffer.String()
	if needsMoreInput(source) {
		return "", false, false
	}
	r.buffer.Reset()

	if err := r.session.Run(source); err != nil {
		printError(r.out, err)
	}
	return source, true, false
}

func (r *REPL) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(r.out, "  :env            Show global variables")
		fmt.Fprintln(r.out, "  :clear          Start again with fresh globals")
		fmt.Fprintln(r.out, "  exit, quit      Exit the REPL")
	case ":env":
		r.printGlobals()
	case ":clear":
		r.session = qanta.NewSession(r.opts.Session)
		fmt.Fprintln(r.out, "Environment cleared")
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printGlobals lists user-defined globals, leaving out natives.
func (r *REPL) printGlobals() {
	names := r.userGlobals()
	if len(names) == 0 {
		fmt.Fprintln(r.out, "(no user variables)")
		return
	}
	for _, name := range names {
		value, _ := r.session.Global(name)
		inspect := value.Inspect()
		if len(inspect) > 60 {
			inspect = inspect[:57] + "..."
		}
		fmt.Fprintf(r.out, "  %s: %s = %s\n", name, value.Type(), inspect)
	}
}

func (r *REPL) userGlobals() []string {
	var names []string
	for _, name := range r.session.Identifiers() {
		if value, ok := r.session.Global(name); ok && value.Type() != evaluator.NATIVE_OBJ {
			names = append(names, name)
		}
	}
	return names
}

// complete offers keywords and global names that extend the word under
// the cursor.
func (r *REPL) complete(line string) []string {
	if strings.TrimSpace(line) == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}

	start := strings.LastIndexFunc(line, func(c rune) bool {
		return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	}) + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	candidates := append(lexer.Keywords(), r.session.Identifiers()...)
	sort.Strings(candidates)

	var matches []string
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, word) && !seen[candidate] {
			seen[candidate] = true
			matches = append(matches, prefix+candidate)
		}
	}
	return matches
}

func (r *REPL) historyPath() string {
	path := r.opts.HistoryFile
	if path == "" {
		return filepath.Join(os.TempDir(), ".qanta_history")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// needsMoreInput reports whether input stops inside a block, a call or
// grouping, a string or a block comment.
func needsMoreInput(input string) bool {
	l := lexer.New(input)
	depth := 0
	for {
		tok := l.NextToken()
		switch tok.Type {
		case lexer.LBRACE, lexer.LPAREN:
			depth++
		case lexer.RBRACE, lexer.RPAREN:
			depth--
		case lexer.ILLEGAL:
			code := l.Err().Code
			return code == "LEX-0002" || code == "LEX-0003"
		case lexer.EOF:
			return depth > 0
		}
	}
}

// printError writes each error in err on its own line.
func printError(out io.Writer, err error) {
	var list qerrors.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintln(out, e.PrettyString())
		}
		return
	}
	var qerr *qerrors.QantaError
	if errors.As(err, &qerr) {
		fmt.Fprintln(out, qerr.PrettyString())
		return
	}
	fmt.Fprintln(out, err)
}
