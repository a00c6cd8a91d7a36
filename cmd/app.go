package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/owl-time-keeper/internal/day"
	"github.com/Tiliavir/owl-time-keeper/internal/metrics"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/settings"
	"github.com/Tiliavir/owl-time-keeper/internal/storage"
	"github.com/Tiliavir/owl-time-keeper/internal/usecase"
)

// app bundles what a command needs to talk to the data.
type app struct {
	settings *settings.Repository
	store    *storage.Store
	svc      *usecase.Service
}

// openSettings opens the settings file and rolls back a storage path
// migration left pending by an interrupted run.
func openSettings(ctx context.Context) (*settings.Repository, error) {
	repo, err := settings.Open(ctx, settings.Options{
		Path:              cfg.SettingsPath(),
		DefaultStorageDir: cfg.Dir,
		DataFiles:         storage.DataFiles(cfg.DatabaseFile),
	})
	if err != nil {
		return nil, err
	}
	abandoned, err := repo.Recover(ctx)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if abandoned != "" {
		fmt.Fprintf(os.Stderr, "Warning: storage move to %s did not finish and was rolled back.\n", abandoned)
	}
	return repo, nil
}

// openApp opens settings, the database at the settled storage path and
// the use-case service. A nil recorder disables metrics.
func openApp(ctx context.Context, recorder metrics.Recorder) (*app, error) {
	repo, err := openSettings(ctx)
	if err != nil {
		return nil, err
	}
	sp, err := repo.StoragePath(ctx)
	if err != nil {
		repo.Close()
		return nil, err
	}
	store, err := storage.Open(ctx, filepath.Join(sp.AbsolutePath, cfg.DatabaseFile))
	if err != nil {
		repo.Close()
		return nil, err
	}
	svc, err := usecase.New(ctx, usecase.Options{Store: store, Settings: repo, Recorder: recorder})
	if err != nil {
		_ = store.Close()
		repo.Close()
		return nil, err
	}
	return &app{settings: repo, store: store, svc: svc}, nil
}

func (a *app) Close() {
	a.svc.Close()
	a.settings.Close()
	_ = a.store.Close()
}

// mustOpenApp opens the app or exits with a storage error.
func mustOpenApp(ctx context.Context) *app {
	a, err := openApp(ctx, nil)
	if err != nil {
		storageError(err)
	}
	return a
}

// resolveTask looks ref up as a task id or name, exiting 1 when unknown.
func resolveTask(ctx context.Context, a *app, ref string) model.Task {
	task, err := a.svc.FindTask(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		userError("No task named %q.", ref)
	}
	if err != nil {
		storageError(err)
	}
	return task
}

// parseDay reads a YYYY-MM-DD flag value in the local zone, defaulting to today.
func parseDay(s string) day.Day {
	today := day.Today()
	if s == "" {
		return today
	}
	d, err := day.Parse(s, today.UTCOffset)
	if err != nil {
		userError("invalid --date value %q: use YYYY-MM-DD", s)
	}
	return d
}

func since(ms int64) time.Duration {
	return time.Since(time.UnixMilli(ms)).Truncate(time.Second)
}
