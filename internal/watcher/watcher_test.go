package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (r *recordingIndexer) IndexFile(_ context.Context, _ string, path string, _ bool) ([]store.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, path)
	return nil, nil
}

func (r *recordingIndexer) RemoveFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
	return nil
}

func (r *recordingIndexer) snapshot() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.indexed), len(r.removed)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	rec := &recordingIndexer{}
	w := New(root, ".py", rec, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(root, "a.py")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		indexed, _ := rec.snapshot()
		return indexed == 1
	}, 2*time.Second, 50*time.Millisecond)
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	root := t.TempDir()
	rec := &recordingIndexer{}
	w := New(root, ".py", rec, nil)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
}
