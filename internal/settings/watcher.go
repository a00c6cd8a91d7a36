package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
)

// Reconcile re-reads the settings file and publishes every observed field
// whose value differs from the last one written or published by r. It
// returns the events it published.
func (r *Repository) Reconcile(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	s := r.loadOrDefault()
	var events []string
	if s.MenuBarRestriction != r.published.MenuBarRestriction {
		events = append(events, EventMenuBarRestrictionChanged)
	}
	if s.IsDockIconVisible != r.published.IsDockIconVisible {
		events = append(events, EventDockIconVisibilityChanged)
	}
	r.published = s
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	for _, e := range events {
		switch e {
		case EventMenuBarRestrictionChanged:
			r.emit(seq, e, s.MenuBarRestriction)
		case EventDockIconVisibilityChanged:
			r.emit(seq, e, s.IsDockIconVisible)
		}
	}
	return events, nil
}

// Watcher reconciles the repository whenever the settings file is changed
// by another process.
type Watcher struct {
	repo     *Repository
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// NewWatcher creates a watcher for repo's settings file.
func NewWatcher(repo *Repository, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{repo: repo, watcher: w, debounce: debounce, done: make(chan struct{})}, nil
}

// Start watches the directory of the settings file (more reliable than the
// file itself, which is replaced on every write).
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.repo.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
	}
	slog.Info("Watching settings file", logfields.Path(w.repo.Path()))
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.loop(ctx)
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	started := w.started
	w.mu.Unlock()
	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	name := filepath.Base(w.repo.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("Settings file change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.trigger(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Settings watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		events, err := w.repo.Reconcile(ctx)
		if err != nil {
			slog.Debug("Settings reconcile skipped", logfields.Error(err))
			return
		}
		for _, e := range events {
			slog.Info("Settings changed on disk", logfields.Event(e))
		}
	})
}
