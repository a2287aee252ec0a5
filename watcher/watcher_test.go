package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	set "github.com/deckarep/golang-set/v2"
	"github.com/m-manu/picstream/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWatcher(t *testing.T, root string, opts Options) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(root, opts, logging.NewNopLogger())
	require.NoError(t, err)
	batches := make(chan []string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, paths []string) {
			batches <- paths
		})
	}()
	// give the watcher time to register the directories
	time.Sleep(100 * time.Millisecond)
	return batches, cancel, done
}

func TestWatcher_BatchesNewFiles(t *testing.T) {
	root := t.TempDir()
	batches, cancel, done := runWatcher(t, root, Options{
		Excluded: set.NewThreadUnsafeSet("Thumbs.db"),
		Debounce: 100 * time.Millisecond,
	})

	for _, name := range []string{"b.jpg", "a.jpg", ".hidden.jpg", "Thumbs.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	select {
	case paths := <-batches:
		assert.Equal(t, []string{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.jpg")}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch received")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_Recursive(t *testing.T) {
	root := t.TempDir()
	batches, cancel, done := runWatcher(t, root, Options{Recursive: true, Debounce: 100 * time.Millisecond})
	defer func() {
		cancel()
		<-done
	}()

	sub := filepath.Join(root, "2024")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "clip.mp4"), []byte("x"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-batches:
			if assert.NotEmpty(t, paths) && paths[len(paths)-1] == filepath.Join(sub, "clip.mp4") {
				return
			}
		case <-deadline:
			t.Fatal("file in new subdirectory not reported")
		}
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), Options{}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background(), func(context.Context, []string) {}))
}
