package qanta

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/qanta/pkg/qanta/evaluator"
)

// Logger receives program output. It is the evaluator's interface.
type Logger = evaluator.Logger

// StdoutLogger returns the logger used when none is given.
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *writerLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.w, joinValues(values))
}

func (l *writerLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, joinValues(values))
}

// WriterLogger returns a logger that writes program output to w.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// BufferedLogger keeps program output in memory, one entry per line.
// Text logged without a newline is held until the next LogLine.
type BufferedLogger struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
}

// NewBufferedLogger creates an empty buffered logger.
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values))
}

func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values))
	l.lines = append(l.lines, l.pending.String())
	l.pending.Reset()
}

// String returns the output as it would have appeared on a terminal.
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Lines returns a copy of the completed lines.
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Reset discards everything captured so far.
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.pending.Reset()
}

type nullLogger struct{}

func (nullLogger) Log(...any)     {}
func (nullLogger) LogLine(...any) {}

// NullLogger returns a logger that discards program output.
func NullLogger() Logger {
	return nullLogger{}
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
