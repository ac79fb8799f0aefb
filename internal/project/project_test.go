package project

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InsertIfAbsent(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	r := NewRegistry(dataDir)
	t.Cleanup(func() { _ = r.Close(root) })

	p1, err := r.Open(root)
	require.NoError(t, err)
	p2, err := r.Open(root)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestOpen_ConcurrentCallsConstructOnce(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	r := NewRegistry(dataDir)
	t.Cleanup(func() { _ = r.Close(root) })

	var wg sync.WaitGroup
	results := make([]*Project, 10)
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Open(root)
			require.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestStorePath_Deterministic(t *testing.T) {
	p1 := StorePath("/data", "/home/user/proj")
	p2 := StorePath("/data", "/home/user/proj")
	assert.Equal(t, p1, p2)

	p3 := StorePath("/data", "/home/user/other")
	assert.NotEqual(t, p1, p3)
}
