package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wells: []\n"), 0644))

	var calls atomic.Int32
	changed := make(chan string, 4)
	w := New(func(p string) {
		calls.Add(1)
		changed <- p
	}, path).WithDebounce(50 * time.Millisecond)
	startWatcher(t, w)

	// A burst of writes fires once
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("wells: []\n"), 0644))
	}

	select {
	case p := <-changed:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	changed := make(chan string, 1)
	w := New(func(p string) { changed <- p }, path).WithDebounce(10 * time.Millisecond)
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), nil, 0644))

	select {
	case p := <-changed:
		t.Fatalf("unexpected change for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(func(string) {}, filepath.Join(t.TempDir(), "gone", "network.yaml"))
	err := w.Watch(context.Background())
	assert.Error(t, err)
}

func TestWatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	w := New(func(string) {}, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	<-w.Ready()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
