// Package qanta chains the Qanta pipeline stages behind a small API for
// embedding: Check validates a program, Run executes one, and Session keeps
// a global environment alive across many runs for the REPL and watch mode.
package qanta

import (
	"fmt"
	"io"
	"time"

	"github.com/sambeau/qanta/pkg/qanta/ast"
	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/evaluator"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
	"github.com/sambeau/qanta/pkg/qanta/natives"
	"github.com/sambeau/qanta/pkg/qanta/parser"
	"github.com/sambeau/qanta/pkg/qanta/resolver"
)

// Options configures a run. The zero value runs with stdout output, the
// default call depth and the full native table.
type Options struct {
	// Filename is attached to every error reported for the source.
	Filename string

	// Logger receives print output.
	Logger Logger

	// MaxCallDepth bounds nested calls. Zero means the evaluator default.
	MaxCallDepth int

	// Locale and DisabledNatives configure the standard natives.
	Locale          string
	DisabledNatives []string

	// Natives are installed after the standard table and may replace
	// entries in it.
	Natives natives.Table

	// ScopeTrace observes every variable read.
	ScopeTrace evaluator.ScopeTrace

	// Verbose, when set, receives a "[RUN]" line per stage.
	Verbose io.Writer
}

// Program is source that passed every static stage.
type Program struct {
	Statements []ast.Statement
	Locals     resolver.Locals
	Tokens     int
}

// Check runs the tokenizer, parser and resolver over source without
// executing it. It returns a *qerrors.QantaError, or a qerrors.ErrorList
// when the parser found several errors.
func Check(source string) error {
	_, _, err := compile(source, 0)
	return err
}

// Run checks and executes source in a fresh global environment.
func Run(source string, opts Options) error {
	return NewSession(opts).Run(source)
}

// Session runs successive sources against one global environment, so a
// later source sees the variables, functions and classes of earlier ones.
// A Session is not safe for concurrent use.
type Session struct {
	opts   Options
	interp *evaluator.Interpreter
	lastID ast.NodeID
}

// NewSession creates a session with a fresh global environment.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = StdoutLogger()
	}

	table := natives.Default(natives.Options{
		Logger:   logger,
		Locale:   opts.Locale,
		Disabled: opts.DisabledNatives,
	})
	table = append(table, opts.Natives...)

	interp := evaluator.New(evaluator.NewGlobals(table), nil)
	interp.MaxCallDepth = opts.MaxCallDepth
	interp.ScopeTrace = opts.ScopeTrace

	return &Session{opts: opts, interp: interp}
}

// Run checks source and executes it in the session's global environment.
// Nothing executes if a static stage fails.
func (s *Session) Run(source string) error {
	start := time.Now()

	program, lastID, err := compile(source, s.lastID)
	if err != nil {
		s.verbosef("[RUN] static error")
		return s.withFile(err)
	}
	s.lastID = lastID
	s.verbosef("[RUN] tokens=%d statements=%d locals=%d", program.Tokens, len(program.Statements), len(program.Locals))

	if err := s.interp.Execute(program.Statements, program.Locals); err != nil {
		s.verbosef("[RUN] runtime error after %s", time.Since(start).Round(time.Microsecond))
		return s.withFile(err)
	}
	s.verbosef("[RUN] ok in %s", time.Since(start).Round(time.Microsecond))
	return nil
}

// Identifiers lists every name bound in the global environment.
func (s *Session) Identifiers() []string {
	return s.interp.Globals().AllIdentifiers()
}

// Global returns the value bound to name in the global environment.
func (s *Session) Global(name string) (evaluator.Object, bool) {
	return s.interp.Globals().Get(name)
}

func (s *Session) verbosef(format string, args ...any) {
	if s.opts.Verbose != nil {
		fmt.Fprintf(s.opts.Verbose, format+"\n", args...)
	}
}

func (s *Session) withFile(err error) error {
	return WithFile(err, s.opts.Filename)
}

// WithFile attaches file to a pipeline error. Other errors, and an empty
// file, leave err unchanged.
func WithFile(err error, file string) error {
	if file == "" {
		return err
	}
	switch e := err.(type) {
	case *qerrors.QantaError:
		return e.WithFile(file)
	case qerrors.ErrorList:
		return e.WithFile(file)
	}
	return err
}

// compile runs the static stages, numbering nodes after lastID.
func compile(source string, lastID ast.NodeID) (*Program, ast.NodeID, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, lastID, err
	}

	p := parser.New(tokens)
	p.ContinueFrom(lastID)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, lastID, errs
	}

	locals, err := resolver.Resolve(program.Statements)
	if err != nil {
		return nil, lastID, err
	}

	return &Program{
		Statements: program.Statements,
		Locals:     locals,
		Tokens:     len(tokens),
	}, p.LastID(), nil
}

// IsStatic reports whether err came from a static stage.
func IsStatic(err error) bool {
	switch e := err.(type) {
	case *qerrors.QantaError:
		return e.IsStatic()
	case qerrors.ErrorList:
		return len(e) > 0 && e[0].IsStatic()
	}
	return false
}
