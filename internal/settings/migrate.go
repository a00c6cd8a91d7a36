package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

var (
	// ErrDestinationExists is returned when the new storage root already holds a data file.
	ErrDestinationExists = errors.New("settings: destination already contains data files")
	// ErrMigrationInterrupted marks a storage path left pending by an earlier run.
	ErrMigrationInterrupted = errors.New("settings: storage path migration was interrupted")
)

// SetStoragePath relocates the storage root in two phases. The intent is
// written first as Pending(old, path); when migrate is set the data files are
// then copied to path; finally Settled(path) is written. A failed copy
// removes the partial copies and restores Settled(old). The old files are
// never deleted.
func (r *Repository) SetStoragePath(ctx context.Context, path string, migrate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("settings: storage path %q is not absolute", path)
	}
	path = filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.loadOrDefault()
	oldPath := current.StoragePath.AbsolutePath
	if oldPath == path && current.StoragePath.State() == model.Settled {
		return nil
	}
	if migrate {
		if err := r.checkDestination(oldPath, path); err != nil {
			return err
		}
	}

	pending := current
	pending.StoragePath = model.StoragePath{AbsolutePath: oldPath, PendingAbsolutePath: &path}
	if err := r.save(pending); err != nil {
		return fmt.Errorf("settings: recording pending storage path: %w", err)
	}
	r.logger.Info("storage path migration started", logfields.Path(path), "from", oldPath, "copy", migrate)

	if migrate {
		if err := r.relocate(ctx, oldPath, path); err != nil {
			rollback := current
			rollback.StoragePath = model.StoragePath{AbsolutePath: oldPath}
			if rbErr := r.save(rollback); rbErr != nil {
				return errors.Join(fmt.Errorf("settings: migrating data files: %w", err),
					fmt.Errorf("settings: rolling back storage path: %w", rbErr))
			}
			return fmt.Errorf("settings: migrating data files: %w", err)
		}
	}

	committed := current
	committed.StoragePath = model.StoragePath{AbsolutePath: path}
	if err := r.save(committed); err != nil {
		return fmt.Errorf("settings: committing storage path: %w", err)
	}
	r.logger.Info("storage path migration committed", logfields.Path(path))
	return nil
}

// Recover resolves a storage path left pending by a crash. The old root is
// still authoritative and untouched, so the intent is rolled back to
// Settled(old). It returns the rolled back pending path, or "" when the
// settings were already settled.
func (r *Repository) Recover(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.loadOrDefault()
	if current.StoragePath.State() == model.Settled {
		return "", nil
	}
	pending := *current.StoragePath.PendingAbsolutePath
	r.logger.Warn("rolling back interrupted storage path migration",
		logfields.Path(pending), "authoritative", current.StoragePath.AbsolutePath,
		logfields.Error(ErrMigrationInterrupted))

	current.StoragePath.PendingAbsolutePath = nil
	if err := r.save(current); err != nil {
		return "", fmt.Errorf("%w: rolling back: %w", ErrMigrationInterrupted, err)
	}
	return pending, nil
}

func (r *Repository) checkDestination(oldPath, newPath string) error {
	for _, name := range r.dataFiles {
		if _, err := os.Stat(filepath.Join(oldPath, name)); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(newPath, name)); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, filepath.Join(newPath, name))
		}
	}
	return nil
}

// relocate copies every existing data file from oldPath to newPath. On error
// the files it already copied are removed again.
func (r *Repository) relocate(ctx context.Context, oldPath, newPath string) error {
	if err := os.MkdirAll(newPath, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", newPath, err)
	}
	var copied []string
	for _, name := range r.dataFiles {
		if err := ctx.Err(); err != nil {
			removeAll(copied)
			return err
		}
		src := filepath.Join(oldPath, name)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		dst := filepath.Join(newPath, name)
		if err := copyFile(src, dst); err != nil {
			removeAll(copied)
			return err
		}
		copied = append(copied, dst)
		r.logger.Debug("copied data file", logfields.Path(dst))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
