// Package watcher re-runs the converter when watched Go files change.
// Editor save storms are coalesced by a short debounce window.
package watcher

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler receives the deduplicated set of changed files after a quiet
// period.
type Handler func(files []string) error

// Watcher monitors directory trees for changes to Go source files.
type Watcher struct {
	fsw         *fsnotify.Watcher
	logger      *zap.Logger
	debouncer   *debouncer
	watchedDirs map[string]bool
}

// New creates a watcher that reports batches of changed files after the
// given debounce delay.
func New(logger *zap.Logger, delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fsw:         fsw,
		logger:      logger,
		debouncer:   newDebouncer(delay),
		watchedDirs: make(map[string]bool),
	}, nil
}

// Watch registers the paths (files or directory trees) and starts
// delivering change batches to handler. It returns immediately.
func (w *Watcher) Watch(paths []string, handler Handler) error {
	for _, path := range paths {
		if err := w.addPath(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
	}
	go w.eventLoop(handler)
	return nil
}

func (w *Watcher) addPath(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(walkPath) {
			return filepath.SkipDir
		}
		if !w.watchedDirs[walkPath] {
			if err := w.fsw.Add(walkPath); err != nil {
				return fmt.Errorf("failed to add directory %s to watcher: %w", walkPath, err)
			}
			w.watchedDirs[walkPath] = true
		}
		return nil
	})
}

func (w *Watcher) eventLoop(handler Handler) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event, handler)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, handler Handler) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !isGoFile(event.Name) || skipFile(event.Name) {
		return
	}
	w.debouncer.add(event.Name, func(files []string) {
		if err := handler(files); err != nil {
			w.logger.Error("Change handler failed", zap.Error(err))
		}
	})
}

// Close stops event delivery. A pending debounce batch is dropped.
func (w *Watcher) Close() error {
	w.debouncer.stop()
	return w.fsw.Close()
}

func isGoFile(path string) bool {
	return strings.HasSuffix(path, ".go")
}

func skipDir(path string) bool {
	switch filepath.Base(path) {
	case "vendor", "testdata", ".git", ".idea", ".vscode":
		return true
	}
	return false
}

// skipFile filters editor temp files that arrive alongside real saves.
func skipFile(path string) bool {
	filename := filepath.Base(path)
	return strings.HasPrefix(filename, ".") ||
		strings.HasSuffix(filename, "~") ||
		strings.HasSuffix(filename, ".tmp") ||
		strings.HasSuffix(filename, ".swp")
}
