package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger(t *testing.T) {
	t.Helper()
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(99)})))
	t.Cleanup(func() { slog.SetDefault(old) })
}

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()

	w := New(path, "Verification complete")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop after context cancellation")
		}
	})

	// Give the watch a moment to register before the test writes
	time.Sleep(50 * time.Millisecond)
	return w
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open log for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("failed to append line: %v", err)
	}
}

func expectTrigger(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Triggers():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a trigger, got none")
	}
}

func expectNoTrigger(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Triggers():
		t.Fatal("unexpected trigger")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MarkerTriggers(t *testing.T) {
	quietLogger(t)

	path := filepath.Join(t.TempDir(), "bootstrap_log.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	w := startWatcher(t, path)

	appendLine(t, path, "[2026-08-30 10:00:01] Verification complete")
	expectTrigger(t, w)
}

func TestWatcher_UnrelatedLineDoesNotTrigger(t *testing.T) {
	quietLogger(t)

	path := filepath.Join(t.TempDir(), "bootstrap_log.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	w := startWatcher(t, path)

	appendLine(t, path, "[2026-08-30 10:00:01] Downloading update chunk 3/9")
	expectNoTrigger(t, w)
}

func TestWatcher_MarkerNotOnLastLineIsMissed(t *testing.T) {
	quietLogger(t)

	path := filepath.Join(t.TempDir(), "bootstrap_log.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	w := startWatcher(t, path)

	// Two lines land in one write; only the last is inspected, so the
	// marker on the first line is not seen. Documented behavior.
	appendLine(t, path, "Verification complete\n[2026-08-30 10:00:02] Launching client")
	expectNoTrigger(t, w)
}

func TestWatcher_TruncateToEmptyDoesNotCrash(t *testing.T) {
	quietLogger(t)

	path := filepath.Join(t.TempDir(), "bootstrap_log.txt")
	if err := os.WriteFile(path, []byte("old contents\n"), 0o644); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	w := startWatcher(t, path)

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	expectNoTrigger(t, w)

	// Watcher is still armed afterwards
	appendLine(t, path, "Verification complete")
	expectTrigger(t, w)
}

func TestWatcher_MissingFileFailsRegistration(t *testing.T) {
	quietLogger(t)

	w := New(filepath.Join(t.TempDir(), "does-not-exist.txt"), "Verification complete")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := w.Run(ctx); err == nil {
		t.Fatal("expected registration failure for missing file")
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"single line", "Verification complete\n", "Verification complete"},
		{"multiple lines", "one\ntwo\nthree\n", "three"},
		{"no trailing newline", "one\ntwo", "two"},
		{"crlf", "one\r\ntwo\r\n", "two"},
		{"blank trailing lines", "one\n\n\n", "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "log.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write: %v", err)
			}
			got, err := lastLine(path)
			if err != nil {
				t.Fatalf("lastLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("lastLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLastLine_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("ok\n\xff\xfe\xfd"), 0o644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if _, err := lastLine(path); err == nil {
		t.Error("expected an encoding error")
	}
}
