package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

func TestWatcherPublishesChangesMadeByAnotherProcess(t *testing.T) {
	repo := openRepo(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []model.MenuBarRestriction
	repo.ObserveMenuBarRestriction(func(r model.MenuBarRestriction) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r)
	})

	w, err := NewWatcher(repo, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	defer func() { assert.NoError(t, w.Stop()) }()

	external := repo.Default()
	external.MenuBarRestriction = model.MenuBarRestriction{Restricted: true, MaxCharacters: 3}
	data, err := json.Marshal(external)
	require.NoError(t, err)
	writeRaw(t, repo, string(data))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, external.MenuBarRestriction, seen[1])
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	repo := openRepo(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	repo.ObserveDockIconVisibility(func(bool) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	w, err := NewWatcher(repo, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	defer func() { assert.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))

	assert.Never(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestWatcherStopWithoutStart(t *testing.T) {
	repo := openRepo(t, t.TempDir())
	w, err := NewWatcher(repo, 0)
	require.NoError(t, err)

	stopped := make(chan error, 1)
	go func() { stopped <- w.Stop() }()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a watcher that never started")
	}
}

func TestWatcherStopAfterFailedStart(t *testing.T) {
	repo, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), "missing", "settings.json")})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	w, err := NewWatcher(repo, 0)
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()), "directory does not exist")

	stopped := make(chan error, 1)
	go func() { stopped <- w.Stop() }()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}
