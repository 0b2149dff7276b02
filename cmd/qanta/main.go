package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sambeau/qanta/config"
	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
	"github.com/sambeau/qanta/pkg/qanta/qanta"
	"github.com/sambeau/qanta/pkg/qanta/repl"
	"github.com/sambeau/qanta/pkg/qanta/watch"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

// sourceExt is the suffix every script must carry.
const sourceExt = ".qnt"

// Exit codes follow sysexits(3).
const (
	exitOK      = 0
	exitUsage   = 2
	exitStatic  = 65 // EX_DATAERR
	exitNoInput = 66 // EX_NOINPUT
	exitRuntime = 70 // EX_SOFTWARE
	exitIO      = 74 // EX_IOERR
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// cli holds the parsed command line.
type cli struct {
	help       bool
	version    bool
	check      bool
	watch      bool
	verbose    bool
	jsonErrors bool
	configPath string
	eval       string
	files      []string
}

func parseFlags(args []string, stderr io.Writer) (*cli, error) {
	fs := flag.NewFlagSet("qanta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(stderr) }

	c := &cli{}

	// Display flags
	fs.BoolVar(&c.help, "h", false, "Show help message")
	fs.BoolVar(&c.help, "help", false, "Show help message")
	fs.BoolVar(&c.version, "V", false, "Show version information")
	fs.BoolVar(&c.version, "version", false, "Show version information")

	// Evaluation flags
	fs.StringVar(&c.eval, "e", "", "Evaluate code string")
	fs.StringVar(&c.eval, "eval", "", "Evaluate code string")
	fs.BoolVar(&c.check, "check", false, "Check without executing")
	fs.BoolVar(&c.watch, "watch", false, "Re-run the file when it changes")
	fs.BoolVar(&c.verbose, "verbose", false, "Log a summary of each run")
	fs.BoolVar(&c.jsonErrors, "json-errors", false, "Report errors as JSON")
	fs.StringVar(&c.configPath, "config", "", "Path to qanta.yaml")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.files = fs.Args()
	return c, nil
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	c, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	if c.help {
		printHelp(stdout)
		return exitOK
	}
	if c.version {
		fmt.Fprintf(stdout, "qanta version %s\n", Version)
		return exitOK
	}

	cfg, err := config.Load(c.configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	d := &driver{cli: c, cfg: cfg, stdout: stdout, stderr: stderr}

	for _, file := range c.files {
		if filepath.Ext(file) != sourceExt {
			fmt.Fprintf(stderr, "Error: %s is not a %s file\n", file, sourceExt)
			return exitUsage
		}
	}

	// Mode dispatch
	switch {
	case c.eval != "":
		return d.execute("", c.eval)
	case c.check:
		if len(c.files) == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return exitUsage
		}
		return d.checkFiles(c.files)
	case c.watch:
		if len(c.files) != 1 {
			fmt.Fprintln(stderr, "Error: --watch requires exactly one file")
			return exitUsage
		}
		return d.watchFile(c.files[0])
	case len(c.files) > 1:
		fmt.Fprintln(stderr, "Error: only one file can be run at a time")
		return exitUsage
	case len(c.files) == 1:
		return d.executeFile(c.files[0])
	default:
		return d.startREPL()
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `qanta - Qanta language interpreter version %s

Usage:
  qanta [options] [file.qnt]
  qanta -e "code"
  qanta --check <file>...
  qanta --watch <file>

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Evaluation Options:
  -e, --eval <code>     Evaluate code string
  --check               Check without executing (can specify multiple files)
  --watch               Run the file again every time it is saved
  --verbose             Log a summary of each run to stderr
  --json-errors         Report errors as JSON, one per line
  --config <path>       Read settings from this file instead of qanta.yaml

Exit Codes:
  0    Success
  2    Usage or configuration error
  65   Syntax or resolve error
  66   File could not be read
  70   Runtime error
  74   REPL or watcher I/O failure

Examples:
  qanta                          Start interactive REPL
  qanta script.qnt               Execute a Qanta script
  qanta -e 'print(1 + 2);'       Evaluate inline code (outputs: 3)
  qanta --check *.qnt            Check multiple files
  qanta --watch script.qnt       Re-run a script on every save
`, Version)
}

// driver runs the selected mode with the loaded configuration.
type driver struct {
	cli    *cli
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func (d *driver) options(filename string) qanta.Options {
	opts := qanta.Options{
		Filename:        filename,
		Logger:          qanta.WriterLogger(d.stdout),
		MaxCallDepth:    d.cfg.Interpreter.MaxCallDepth,
		Locale:          d.cfg.Natives.Locale,
		DisabledNatives: d.cfg.Natives.Disabled,
	}
	if d.cli.verbose {
		opts.Verbose = d.stderr
	}
	if d.cfg.Interpreter.TraceScopes {
		opts.ScopeTrace = func(name string, tok lexer.Token, resolved, hops int) {
			fmt.Fprintf(d.stderr, "[SCOPE] %s at %d:%d resolved=%d hops=%d\n", name, tok.Line, tok.Column, resolved, hops)
		}
	}
	return opts
}

// execute runs source and reports any error with its source context.
func (d *driver) execute(filename, source string) int {
	err := qanta.Run(source, d.options(filename))
	if err == nil {
		return exitOK
	}
	d.printError(source, err)
	if qanta.IsStatic(err) {
		return exitStatic
	}
	return exitRuntime
}

// executeFile reads and executes a qanta source file
func (d *driver) executeFile(filename string) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(d.stderr, "Error reading file '%s': %v\n", filename, err)
		return exitNoInput
	}
	return d.execute(filename, string(content))
}

func (d *driver) checkFiles(files []string) int {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(d.stderr, "Error reading %s: %v\n", filename, err)
			return exitNoInput
		}

		if err := qanta.Check(string(content)); err != nil {
			d.printError(string(content), qanta.WithFile(err, filename))
			hasErrors = true
		}
	}

	if hasErrors {
		return exitStatic
	}
	return exitOK
}

func (d *driver) watchFile(filename string) int {
	opts := d.options(filename)
	w, err := watch.New(filename, func(source string) error {
		return qanta.Run(source, opts)
	}, watch.Options{
		Debounce: d.cfg.Watch.Debounce,
		Stdout:   d.stderr,
		Stderr:   d.stderr,
	})
	if err != nil {
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return exitIO
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return exitIO
	}
	return exitOK
}

func (d *driver) startREPL() int {
	err := repl.Start(d.stdout, repl.Options{
		Version:     Version,
		Prompt:      d.cfg.REPL.Prompt,
		HistoryFile: d.cfg.REPL.HistoryFile,
		Session:     d.options(""),
	})
	if err != nil {
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return exitIO
	}
	return exitOK
}

// printError writes each pipeline error in err to stderr, followed by the
// offending source line.
func (d *driver) printError(source string, err error) {
	var errs []*qerrors.QantaError
	var list qerrors.ErrorList
	var qerr *qerrors.QantaError
	switch {
	case errors.As(err, &list):
		errs = list
	case errors.As(err, &qerr):
		errs = []*qerrors.QantaError{qerr}
	default:
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return
	}

	lines := strings.Split(source, "\n")
	for _, e := range errs {
		if d.cli.jsonErrors {
			data, jsonErr := e.ToJSON()
			if jsonErr != nil {
				fmt.Fprintf(d.stderr, "Error: %v\n", jsonErr)
				continue
			}
			fmt.Fprintln(d.stderr, string(data))
			continue
		}
		fmt.Fprintln(d.stderr, e.PrettyString())
		printSourceContext(d.stderr, lines, e.Line, e.Column)
	}
}

// printSourceContext shows the source line at lineNum with a caret under
// colNum. Leading indentation is trimmed from both.
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := strings.TrimRight(lines[lineNum-1], "\r")

	// Calculate how many columns to trim from the left
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == '\t' {
			trimCount += 8
		} else if sourceLine[i] == ' ' {
			trimCount++
		} else {
			break
		}
	}

	fmt.Fprintf(w, "    %s\n", strings.TrimLeft(sourceLine, " \t"))

	if colNum > 0 {
		// Visual column, counting tabs as 8 spaces
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
