// Package watch re-runs a Qanta script whenever its file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a re-run.
const DefaultDebounce = 100 * time.Millisecond

// RunFunc executes one version of the script's source.
type RunFunc func(source string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Stdout   io.Writer
	Stderr   io.Writer
}

// Watcher monitors a script and runs it after every change
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	run      RunFunc
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer

	mu   sync.Mutex
	runs uint64
}

// New creates a watcher for the script at path.
func New(path string, run RunFunc, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		run:      run,
		debounce: opts.Debounce,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}
	return w, nil
}

// Run executes the script once, then again after each change, until ctx
// is cancelled. It watches the script's directory so that editors which
// replace the file on save are still followed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logInfo("watching %s", w.path)

	w.runScript()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(w.debounce)

		case <-pending:
			pending = nil
			w.logInfo("changed: %s", filepath.Base(w.path))
			w.runScript()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// Runs returns how many times the script has been run.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *Watcher) runScript() {
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	content, err := os.ReadFile(w.path)
	if err != nil {
		w.logError("reading %s: %v", w.path, err)
		return
	}
	if err := w.run(string(content)); err != nil {
		w.logError("%v", err)
	}
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
