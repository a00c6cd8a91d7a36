// Package settings persists the application settings file and publishes
// changes of the observed fields on an observable.Channel.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/observable"
)

// Channel events emitted after a successful write.
const (
	EventMenuBarRestrictionChanged = "onMenuBarRestrictionChanged"
	EventDockIconVisibilityChanged = "onDockIconVisibilityChanged"
)

// DefaultMaxCharacters is the menu-bar limit used by the default settings.
const DefaultMaxCharacters = 10

// Options configures a Repository.
type Options struct {
	// Path is the settings file.
	Path string
	// DefaultStorageDir is the storage root used by the default settings.
	// Defaults to the directory containing Path.
	DefaultStorageDir string
	// DataFiles are the file names, relative to the storage root, copied when
	// the storage path is migrated.
	DataFiles []string
	Channel   *observable.Channel
}

// Repository reads and writes the settings file. Writes are serialized and
// always replace the whole file.
type Repository struct {
	path       string
	defaultDir string
	dataFiles  []string
	channel    *observable.Channel
	logger     *slog.Logger

	mu        sync.Mutex
	published model.Settings
	recovery  error
	// seq numbers writes; emitted holds, per event, the seq last published.
	seq     uint64
	emitted map[string]uint64

	menuBar *observable.Observable[model.MenuBarRestriction]
	dock    *observable.Observable[bool]
}

// Open creates the repository and primes its observers from the file on disk.
func Open(ctx context.Context, opts Options) (*Repository, error) {
	if opts.Path == "" {
		return nil, errors.New("settings: empty path")
	}
	if opts.Channel == nil {
		opts.Channel = observable.NewChannel()
	}
	if opts.DefaultStorageDir == "" {
		opts.DefaultStorageDir = filepath.Dir(opts.Path)
	}
	r := &Repository{
		path:       opts.Path,
		defaultDir: opts.DefaultStorageDir,
		dataFiles:  opts.DataFiles,
		channel:    opts.Channel,
		logger:     slog.Default().With(logfields.Path(opts.Path)),
		emitted:    make(map[string]uint64),
	}

	r.mu.Lock()
	r.published = r.loadOrDefault()
	r.mu.Unlock()

	r.menuBar = observable.New[model.MenuBarRestriction](ctx, observable.Config{Event: EventMenuBarRestrictionChanged, Channel: r.channel}, r.MenuBarRestriction)
	r.dock = observable.New[bool](ctx, observable.Config{Event: EventDockIconVisibilityChanged, Channel: r.channel}, r.IsDockIconVisible)
	<-r.menuBar.Ready()
	<-r.dock.Ready()
	return r, nil
}

// Close detaches the observers from the channel.
func (r *Repository) Close() {
	r.menuBar.Close()
	r.dock.Close()
}

// Path returns the settings file location.
func (r *Repository) Path() string { return r.path }

// Channel returns the channel the repository publishes on.
func (r *Repository) Channel() *observable.Channel { return r.channel }

// Default returns the hard-coded settings substituted for an unreadable file.
func (r *Repository) Default() model.Settings {
	return model.Settings{
		StoragePath: model.StoragePath{AbsolutePath: r.defaultDir},
		MenuBarRestriction: model.MenuBarRestriction{
			Restricted:    false,
			MaxCharacters: DefaultMaxCharacters,
		},
		IsDockIconVisible: false,
	}
}

// Load returns the settings, applying the recovery policy on failure.
func (r *Repository) Load(ctx context.Context) (model.Settings, error) {
	if err := ctx.Err(); err != nil {
		return model.Settings{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadOrDefault(), nil
}

// LastRecovery returns the error that caused the most recent load to fall
// back to the defaults, or nil if it read a valid file.
func (r *Repository) LastRecovery() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recovery
}

// StoragePath returns the current storage root record.
func (r *Repository) StoragePath(ctx context.Context) (model.StoragePath, error) {
	s, err := r.Load(ctx)
	return s.StoragePath, err
}

// MenuBarRestriction returns the persisted restriction or the default.
func (r *Repository) MenuBarRestriction(ctx context.Context) (model.MenuBarRestriction, error) {
	s, err := r.Load(ctx)
	return s.MenuBarRestriction, err
}

// IsDockIconVisible returns the persisted flag or the default.
func (r *Repository) IsDockIconVisible(ctx context.Context) (bool, error) {
	s, err := r.Load(ctx)
	return s.IsDockIconVisible, err
}

// SetMenuBarRestriction persists restriction and then notifies observers.
func (r *Repository) SetMenuBarRestriction(ctx context.Context, restriction model.MenuBarRestriction) error {
	if restriction.MaxCharacters < 0 {
		return fmt.Errorf("settings: maxCharacters must not be negative, got %d", restriction.MaxCharacters)
	}
	seq, err := r.update(ctx, func(s *model.Settings) { s.MenuBarRestriction = restriction })
	if err != nil {
		return err
	}
	r.emit(seq, EventMenuBarRestrictionChanged, restriction)
	return nil
}

// SetDockIconVisibility persists visible and then notifies observers.
func (r *Repository) SetDockIconVisibility(ctx context.Context, visible bool) error {
	seq, err := r.update(ctx, func(s *model.Settings) { s.IsDockIconVisible = visible })
	if err != nil {
		return err
	}
	r.emit(seq, EventDockIconVisibilityChanged, visible)
	return nil
}

// ObserveMenuBarRestriction registers listener for restriction changes.
func (r *Repository) ObserveMenuBarRestriction(listener observable.Listener[model.MenuBarRestriction]) *observable.Subscription {
	return r.menuBar.On(listener)
}

// ObserveDockIconVisibility registers listener for dock icon visibility changes.
func (r *Repository) ObserveDockIconVisibility(listener observable.Listener[bool]) *observable.Subscription {
	return r.dock.On(listener)
}

// update runs a read-modify-write of the whole record under the write lock
// and returns the sequence number of the write.
func (r *Repository) update(ctx context.Context, apply func(*model.Settings)) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.loadOrDefault()
	apply(&s)
	if err := r.save(s); err != nil {
		return 0, err
	}
	r.published.MenuBarRestriction = s.MenuBarRestriction
	r.published.IsDockIconVisible = s.IsDockIconVisible
	r.seq++
	return r.seq, nil
}

// emit publishes payload for the write numbered seq. Emits run one at a time
// in channel order, and one that finds a later write of the same event
// already published is dropped, so observers always end on the value of the
// last write even when setters race.
func (r *Repository) emit(seq uint64, event string, payload any) {
	r.channel.Dispatch(func() {
		r.mu.Lock()
		if seq <= r.emitted[event] {
			r.mu.Unlock()
			return
		}
		r.emitted[event] = seq
		r.mu.Unlock()
		r.channel.Publish(event, payload)
	})
}

// loadOrDefault is the recovery policy: any read or validation failure is
// logged and answered with the default settings. Callers hold r.mu.
func (r *Repository) loadOrDefault() model.Settings {
	s, err := r.read()
	if err != nil {
		r.recovery = err
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("settings file not found, using defaults")
		} else {
			var verr *ValidationError
			if errors.As(err, &verr) {
				r.logger.Warn("settings file invalid, using defaults", logfields.Field(verr.Field), logfields.Error(err))
			} else {
				r.logger.Warn("settings file unreadable, using defaults", logfields.Error(err))
			}
		}
		return r.Default()
	}
	r.recovery = nil
	return s
}

func (r *Repository) read() (model.Settings, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return model.Settings{}, fmt.Errorf("reading settings %s: %w", r.path, err)
	}
	return Decode(data)
}

// save atomically replaces the settings file.
func (r *Repository) save(s model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("settings: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshalling JSON: %w", err)
	}
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("settings: writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("settings: renaming temp file: %w", err)
	}
	return nil
}
