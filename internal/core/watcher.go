package core

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long the plan file must stay quiet before a
// reload.
const DefaultWatchDebounce = 300 * time.Millisecond

// Watcher reloads the plan when its file changes on disk.
//
// The directory is watched rather than the file, since editors and our own
// saves replace the file by renaming a new one over it. Writes made by the
// service itself reload as a no-op because their content revision is already
// known.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	reloader Reloader
	path     string
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   sync.Once

	reloads int
}

// NewWatcher creates a watcher for the plan file at path.
func NewWatcher(path string, reloader Reloader, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		reloader: reloader,
		path:     abs,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.close()
		return err
	}
	slog.Info("watching plan file", "path", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for its goroutine to exit and releases the
// underlying handle. It is safe to call on a watcher that never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.close()
}

func (w *Watcher) close() {
	w.closed.Do(func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("error closing plan watcher", "error", err)
		}
	})
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Reloads returns how many reloads changed the plan.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("plan watcher error", "error", err)

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	changed, err := w.reloader.Reload(ctx)
	switch {
	case errors.Is(err, ErrUnsavedChanges):
		// Logged by the service; the next save overwrites the file.
	case err != nil:
		slog.Error("plan reload failed", "path", w.path, "error", err)
	case changed:
		w.mu.Lock()
		w.reloads++
		w.mu.Unlock()
	}
}
