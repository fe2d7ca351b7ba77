// Package watcher follows the Steam bootstrap log and reports when a
// verification/update cycle finishes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
)

// Watcher registers a filesystem watch on one log file. On every modify
// event it inspects the file's last line; when the line carries the
// marker it submits one trigger on the Triggers channel and blocks
// until the consumer has taken it, so trigger cycles never overlap.
//
// Only the last line at event time is inspected. Several lines appended
// between two events can hide an intermediate marker; that imprecision
// is accepted in exchange for a trivial read path.
type Watcher struct {
	Path   string
	Marker string

	triggers chan struct{}
}

func New(path, marker string) *Watcher {
	return &Watcher{
		Path:     path,
		Marker:   marker,
		triggers: make(chan struct{}),
	}
}

// Triggers delivers one value per detected marker.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

// Run registers the watch and consumes events until the context is
// cancelled. A registration failure is returned immediately; the daemon
// treats it as fatal since nothing works without the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create log watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Path, err)
	}

	slog.Info("Watching bootstrap log", "path", w.Path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			slog.Debug("Filesystem event on log file", "event", event.Op.String(), "file", event.Name)

			// Steam rotates the bootstrap log by renaming it aside and
			// creating a fresh file, which drops it from the watch list.
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				go w.rearm(fw)
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.inspect(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("Log watcher error", "error", err)
		}
	}
}

// rearm re-adds the watch after the file was renamed or removed,
// retrying briefly since the replacement file may not exist yet.
func (w *Watcher) rearm(fw *fsnotify.Watcher) {
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(10<<uint(attempt-1)) * time.Millisecond)
		}

		fw.Remove(w.Path)
		if err := fw.Add(w.Path); err == nil {
			slog.Debug("Re-added log watch", "path", w.Path, "attempt", attempt+1)
			return
		} else if attempt == 4 {
			slog.Error("Failed to re-add log watch", "error", err, "path", w.Path)
		}
	}
}

// inspect reads the last line and submits a trigger when it carries the
// marker. Empty and unreadable files are logged and skipped.
func (w *Watcher) inspect(ctx context.Context) {
	line, err := lastLine(w.Path)
	if err != nil {
		slog.Warn("Couldn't read last log line", "error", err)
		return
	}
	if line == "" {
		slog.Debug("Log file is empty")
		return
	}

	if !strings.Contains(line, w.Marker) {
		return
	}

	slog.Info("Verification cycle finished, scheduling patch cycle")
	select {
	case w.triggers <- struct{}{}:
	case <-ctx.Done():
	}
}

func lastLine(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	s := strings.TrimRight(string(data), "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("last line of %s is not valid UTF-8", path)
	}
	return strings.TrimRight(s, "\r"), nil
}
