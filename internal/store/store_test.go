package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_NodeUpsertAndGet(t *testing.T) {
	s := newTestStore(t)

	n := Node{
		ID: "pkg.mod.greet", Kind: KindFunction, Name: "greet", FilePath: "/p/mod.py",
		LineStart: 1, LineEnd: 2, ParentID: "pkg.mod", Signature: "def greet(name: str) -> str:",
		Docstring: "Return a greeting string.", Decorators: nil, FileHash: "abc", IndexedAt: 100,
	}
	require.NoError(t, s.UpsertNode(Node{ID: "pkg.mod", Kind: KindModule, Name: "mod", FilePath: "/p/mod.py", FileHash: "abc"}))
	require.NoError(t, s.UpsertNode(n))

	got, err := s.GetNode("pkg.mod.greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", got.Name)
	assert.Equal(t, KindFunction, got.Kind)
	assert.Empty(t, got.Decorators)

	// Re-insert with a different docstring should replace, not duplicate.
	n.Docstring = "Updated."
	require.NoError(t, s.UpsertNode(n))
	got, err = s.GetNode("pkg.mod.greet")
	require.NoError(t, err)
	assert.Equal(t, "Updated.", got.Docstring)

	nodes, err := s.ListNodes(NodeFilter{Kind: KindFunction})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestStore_GetNodeMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetNode("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteNodesForFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertNodes([]Node{
		{ID: "m", Kind: KindModule, Name: "m", FilePath: "/p/m.py", FileHash: "h"},
		{ID: "m.f", Kind: KindFunction, Name: "f", FilePath: "/p/m.py", ParentID: "m", FileHash: "h"},
		{ID: "other", Kind: KindModule, Name: "other", FilePath: "/p/other.py", FileHash: "h"},
	}))

	n, err := s.DeleteNodesForFile("/p/m.py")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining, err := s.ListNodes(NodeFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "other", remaining[0].ID)
}

func TestStore_EdgeUniqueness(t *testing.T) {
	s := newTestStore(t)
	e := Edge{SourceID: "m.f", TargetID: "g", Kind: EdgeCalls, FilePath: "/p/m.py", Line: 3}
	require.NoError(t, s.UpsertEdge(e))
	e.Line = 10
	require.NoError(t, s.UpsertEdge(e))

	edges, err := s.GetEdges(EdgeFilter{SourceID: "m.f"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 10, edges[0].Line)
}

func TestStore_DeleteEdgesForFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertEdges([]Edge{
		{SourceID: "m.f", TargetID: "g", Kind: EdgeCalls, FilePath: "/p/m.py", Line: 1},
		{SourceID: "m.h", TargetID: "k", Kind: EdgeCalls, FilePath: "/p/other.py", Line: 1},
	}))
	n, err := s.DeleteEdgesForFile("/p/m.py")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := s.GetEdges(EdgeFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertNode(Node{ID: "m", Kind: KindModule, Name: "m", FilePath: "/p/m.py", FileHash: "h"}))
	require.NoError(t, s.UpsertEdge(Edge{SourceID: "m", TargetID: "os", Kind: EdgeImports, FilePath: "/p/m.py"}))
	_, err := s.AddObservation(Observation{Content: "hi", Source: "user"})
	require.NoError(t, err)
	require.NoError(t, s.UpsertIndexedFile(IndexedFile{FilePath: "/p/m.py", FileHash: "h", NodeCount: 1}))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 1, Edges: 1, Observations: 1, IndexedFiles: 1}, st)
}
