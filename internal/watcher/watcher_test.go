package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// startWatcher builds and starts a watcher whose firings arrive on the
// returned channel.
func startWatcher(t *testing.T, path string, debounce time.Duration) (*FileWatcher, chan string) {
	t.Helper()

	fired := make(chan string, 16)
	w, err := New(path, debounce, func(ctx context.Context, p string) {
		fired <- p
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)

	return w, fired
}

func waitForFire(t *testing.T, fired chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case p := <-fired:
		return p
	case <-time.After(timeout):
		t.Fatal("timeout waiting for change notification")
		return ""
	}
}

func assertNoFire(t *testing.T, fired chan string, wait time.Duration) {
	t.Helper()
	select {
	case p := <-fired:
		t.Fatalf("unexpected change notification for %s", p)
	case <-time.After(wait):
	}
}

func TestNew(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := New("", time.Second, func(context.Context, string) {}, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "watch path is empty")
	})

	t.Run("nil handler", func(t *testing.T) {
		_, err := New("debt.csv", time.Second, nil, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "change handler is required")
	})

	t.Run("defaults", func(t *testing.T) {
		w, err := New("debt.csv", 0, func(context.Context, string) {}, nil)
		require.NoError(t, err)
		defer w.watcher.Close()

		assert.Equal(t, defaultDebounce, w.debounce)
		assert.True(t, filepath.IsAbs(w.Path()))
	})
}

func TestWatcherTriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "year,debt\n1993,2.5\n")

	_, fired := startWatcher(t, path, 50*time.Millisecond)

	writeFile(t, path, "year,debt\n1993,2.5\n1994,3.1\n")

	got := waitForFire(t, fired, 2*time.Second)
	assert.Equal(t, path, got)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "initial")

	_, fired := startWatcher(t, path, 150*time.Millisecond)

	// A burst of rapid writes must collapse into one notification
	for i := 0; i < 5; i++ {
		writeFile(t, path, "rewrite")
		time.Sleep(10 * time.Millisecond)
	}

	waitForFire(t, fired, 2*time.Second)
	assertNoFire(t, fired, 400*time.Millisecond)
}

func TestWatcherDetectsRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "old")

	_, fired := startWatcher(t, path, 50*time.Millisecond)

	// Editors write a temp file and rename it over the target
	tmp := filepath.Join(dir, "debt.csv.tmp")
	writeFile(t, tmp, "new")
	require.NoError(t, os.Rename(tmp, path))

	got := waitForFire(t, fired, 2*time.Second)
	assert.Equal(t, path, got)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "data")

	_, fired := startWatcher(t, path, 50*time.Millisecond)

	writeFile(t, filepath.Join(dir, "other.csv"), "noise")

	assertNoFire(t, fired, 300*time.Millisecond)
}

func TestWatcherUpdate(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := filepath.Join(dirA, "debt.csv")
	pathB := filepath.Join(dirB, "other_debt.csv")
	writeFile(t, pathA, "a")
	writeFile(t, pathB, "b")

	w, fired := startWatcher(t, pathA, 50*time.Millisecond)

	require.NoError(t, w.Update(pathB))
	assert.Equal(t, pathB, w.Path())

	writeFile(t, pathB, "b2")
	got := waitForFire(t, fired, 2*time.Second)
	assert.Equal(t, pathB, got)

	// The old file no longer triggers
	writeFile(t, pathA, "a2")
	assertNoFire(t, fired, 300*time.Millisecond)
}

func TestWatcherUpdateSamePathIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "data")

	w, _ := startWatcher(t, path, 50*time.Millisecond)

	require.NoError(t, w.Update(path))
	assert.Equal(t, path, w.Path())
}

func TestWatcherStartOnMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "debt.csv")

	w, err := New(missing, 50*time.Millisecond, func(context.Context, string) {}, discardLogger())
	require.NoError(t, err)
	defer w.watcher.Close()

	err = w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch directory")
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.csv")
	writeFile(t, path, "data")

	w, _ := startWatcher(t, path, 50*time.Millisecond)

	w.Stop()
	w.Stop()
}
