// Package watcher uploads plain-text files dropped into a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"doc-chat/internal/domain"
	"doc-chat/internal/workspace"
)

const defaultSettle = 250 * time.Millisecond

type Uploader interface {
	AddDocument(ctx context.Context, doc domain.Document) error
}

// Watcher uploads each new .txt file once, after writes to it have settled.
type Watcher struct {
	uploader Uploader
	logger   *slog.Logger
	settle   time.Duration

	mu       sync.Mutex
	timers   map[string]*time.Timer
	uploaded map[string]bool
}

func New(uploader Uploader, logger *slog.Logger) (*Watcher, error) {
	if uploader == nil {
		return nil, errors.New("watcher: uploader must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		uploader: uploader,
		logger:   logger,
		settle:   defaultSettle,
		timers:   make(map[string]*time.Timer),
		uploaded: make(map[string]bool),
	}, nil
}

// Run watches dir until ctx is done.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: create: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", dir, err)
	}
	w.logger.InfoContext(ctx, "watching for documents", "dir", dir)

	ready := make(chan string)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !workspace.IsTextFile(filepath.Base(event.Name), "") {
				continue
			}
			w.schedule(ctx, event.Name, ready)
		case path := <-ready:
			w.upload(ctx, path)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "watcher error", "err", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.uploaded[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) upload(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if w.uploaded[path] {
		w.mu.Unlock()
		return
	}
	w.uploaded[path] = true
	w.mu.Unlock()

	res := <-workspace.ReadFileAsync(ctx, path)
	if res.Err != nil {
		w.logger.ErrorContext(ctx, "failed to read document", "path", path, "err", res.Err)
		return
	}
	if err := w.uploader.AddDocument(ctx, res.Document); err != nil {
		w.logger.ErrorContext(ctx, "failed to add document", "path", path, "err", err)
		return
	}
	w.logger.InfoContext(ctx, "document uploaded", "name", res.Document.Name, "id", res.Document.ID)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
