package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

func TestSetStoragePathWithoutMigration(t *testing.T) {
	repo := openRepo(t, t.TempDir())
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "elsewhere")

	require.NoError(t, repo.SetStoragePath(ctx, target, false))

	sp, err := repo.StoragePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Settled, sp.State())
	assert.Equal(t, target, sp.AbsolutePath)
}

func TestSetStoragePathRejectsRelativePath(t *testing.T) {
	repo := openRepo(t, t.TempDir())
	err := repo.SetStoragePath(context.Background(), "relative/dir", false)
	require.Error(t, err)
}

func TestSetStoragePathCopiesDataFiles(t *testing.T) {
	oldRoot := t.TempDir()
	repo := openRepo(t, oldRoot)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(oldRoot, "owl.db"), []byte("database"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(oldRoot, "owl.db-wal"), []byte("wal"), 0o600))

	newRoot := filepath.Join(t.TempDir(), "moved")
	require.NoError(t, repo.SetStoragePath(ctx, newRoot, true))

	data, err := os.ReadFile(filepath.Join(newRoot, "owl.db"))
	require.NoError(t, err)
	assert.Equal(t, "database", string(data))
	data, err = os.ReadFile(filepath.Join(newRoot, "owl.db-wal"))
	require.NoError(t, err)
	assert.Equal(t, "wal", string(data))
	assert.NoFileExists(t, filepath.Join(newRoot, "owl.db-shm"))
	assert.FileExists(t, filepath.Join(oldRoot, "owl.db"), "originals are kept")

	sp, err := repo.StoragePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoragePath{AbsolutePath: newRoot}, sp)
}

func TestSetStoragePathRefusesOccupiedDestination(t *testing.T) {
	oldRoot := t.TempDir()
	repo := openRepo(t, oldRoot)
	ctx := context.Background()
	newRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(oldRoot, "owl.db"), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(newRoot, "owl.db"), []byte("new"), 0o600))

	err := repo.SetStoragePath(ctx, newRoot, true)
	require.ErrorIs(t, err, ErrDestinationExists)

	sp, err := repo.StoragePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoragePath{AbsolutePath: oldRoot}, sp)
	data, err := os.ReadFile(filepath.Join(newRoot, "owl.db"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSetStoragePathRollsBackOnCopyFailure(t *testing.T) {
	oldRoot := t.TempDir()
	repo := openRepo(t, oldRoot)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(oldRoot, "owl.db"), []byte("db"), 0o600))
	// A directory named like a data file cannot be copied.
	require.NoError(t, os.Mkdir(filepath.Join(oldRoot, "owl.db-wal"), 0o700))

	newRoot := filepath.Join(t.TempDir(), "moved")
	err := repo.SetStoragePath(ctx, newRoot, true)
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(newRoot, "owl.db"), "partial copy removed")
	sp, err := repo.StoragePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoragePath{AbsolutePath: oldRoot}, sp)
}

func TestRecoverRollsBackPendingMigration(t *testing.T) {
	oldRoot := t.TempDir()
	repo := openRepo(t, oldRoot)
	ctx := context.Background()

	pending := "/somewhere/new"
	interrupted := repo.Default()
	interrupted.StoragePath.PendingAbsolutePath = &pending
	interrupted.IsDockIconVisible = true
	require.NoError(t, repo.save(interrupted))

	abandoned, err := repo.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, abandoned)

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoragePath{AbsolutePath: oldRoot}, s.StoragePath)
	assert.True(t, s.IsDockIconVisible, "other fields survive the rollback")

	abandoned, err = repo.Recover(ctx)
	require.NoError(t, err)
	assert.Empty(t, abandoned)
}

func TestRecoverHonoursCancelledContext(t *testing.T) {
	repo := openRepo(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Recover(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
