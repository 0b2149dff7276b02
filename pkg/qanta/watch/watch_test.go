package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, sources <-chan string, want string) {
	t.Helper()
	select {
	case got := <-sources:
		if got != want {
			t.Fatalf("ran %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a run of %q", want)
	}
}

func TestWatcherRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.qnt")
	if err := os.WriteFile(script, []byte("print(1);"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources := make(chan string, 10)
	w, err := New(script, func(source string) error {
		sources <- source
		return nil
	}, Options{Debounce: 20 * time.Millisecond, Stdout: io.Discard, Stderr: io.Discard})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, sources, "print(1);")

	// Other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.qnt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(script, []byte("print(2);"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, sources, "print(2);")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if got := w.Runs(); got != 2 {
		t.Errorf("Runs() = %d, want 2", got)
	}
}

func TestWatcherKeepsGoingAfterErrors(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.qnt")
	if err := os.WriteFile(script, []byte("bad"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources := make(chan string, 10)
	w, err := New(script, func(source string) error {
		sources <- source
		if source == "bad" {
			return errors.New("boom")
		}
		return nil
	}, Options{Debounce: 20 * time.Millisecond, Stdout: io.Discard, Stderr: io.Discard})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, sources, "bad")
	if err := os.WriteFile(script, []byte("good"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, sources, "good")
}

func TestWatchMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope", "main.qnt"), func(string) error { return nil },
		Options{Stdout: io.Discard, Stderr: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected an error watching a missing directory")
	}
}
