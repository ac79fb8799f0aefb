package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile_PurgesAndWritesTogether(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertNodes([]Node{
		{ID: "m", Kind: KindModule, Name: "m", FilePath: "/p/m.py", FileHash: "old"},
		{ID: "m.old_fn", Kind: KindFunction, Name: "old_fn", FilePath: "/p/m.py", ParentID: "m", FileHash: "old"},
	}))
	require.NoError(t, s.UpsertEdges([]Edge{
		{SourceID: "m.old_fn", TargetID: "m.other", Kind: EdgeCalls, FilePath: "/p/m.py"},
	}))
	require.NoError(t, s.UpsertIndexedFile(IndexedFile{FilePath: "/p/m.py", FileHash: "old", NodeCount: 2}))

	newNodes := []Node{
		{ID: "m", Kind: KindModule, Name: "m", FilePath: "/p/m.py", FileHash: "new"},
		{ID: "m.new_fn", Kind: KindFunction, Name: "new_fn", FilePath: "/p/m.py", ParentID: "m", FileHash: "new"},
	}
	newEdges := []Edge{
		{SourceID: "m.new_fn", TargetID: "m.helper", Kind: EdgeCalls, FilePath: "/p/m.py"},
	}
	require.NoError(t, s.ReplaceFile("/p/m.py", newNodes, newEdges, IndexedFile{
		FilePath: "/p/m.py", FileHash: "new", NodeCount: 2,
	}))

	nodes, err := s.ListNodes(NodeFilter{FilePath: "/p/m.py"})
	require.NoError(t, err)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"m", "m.new_fn"}, ids)

	edges, err := s.GetEdges(EdgeFilter{})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "m.helper", edges[0].TargetID)

	indexed, err := s.GetIndexedFile("/p/m.py")
	require.NoError(t, err)
	assert.Equal(t, "new", indexed.FileHash)
}

func TestReplaceFile_EmptyNodesAndEdgesStillClearsOldRows(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertNode(Node{ID: "m", Kind: KindModule, Name: "m", FilePath: "/p/m.py", FileHash: "old"}))
	require.NoError(t, s.UpsertEdge(Edge{SourceID: "m", TargetID: "os", Kind: EdgeImports, FilePath: "/p/m.py"}))

	require.NoError(t, s.ReplaceFile("/p/m.py", nil, nil, IndexedFile{FilePath: "/p/m.py", FileHash: "empty"}))

	nodes, err := s.ListNodes(NodeFilter{FilePath: "/p/m.py"})
	require.NoError(t, err)
	assert.Empty(t, nodes)

	edges, err := s.GetEdges(EdgeFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)
}
