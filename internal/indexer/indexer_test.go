package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

func newTestIndexer(t *testing.T) (*Indexer, *store.Store, string) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	root := t.TempDir()
	fs := osfs.New(root)
	return New(s, fs), s, root
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return rel
}

func TestIndexFile_SimpleModule(t *testing.T) {
	ix, s, root := newTestIndexer(t)
	rel := writeFile(t, root, "greet.py", `def greet(name):
    "Return a greeting."
    return f"Hello, {name}"
`)

	nodes, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	var module, fn store.Node
	for _, n := range nodes {
		switch n.Kind {
		case store.KindModule:
			module = n
		case store.KindFunction:
			fn = n
		}
	}
	assert.Equal(t, "greet", module.ID)
	assert.Equal(t, "greet.greet", fn.ID)
	assert.Equal(t, "Return a greeting.", fn.Docstring)
	assert.Equal(t, "def greet(name):", fn.Signature)

	edges, err := s.GetEdges(store.EdgeFilter{SourceID: "greet.greet", Kind: store.EdgeCalls})
	require.NoError(t, err)
	require.Len(t, edges, 0)
}

func TestIndexFile_InheritanceAndMethods(t *testing.T) {
	ix, s, root := newTestIndexer(t)
	rel := writeFile(t, root, "pkg/models.py", `class Base:
    pass


class Child(Base):
    def speak(self):
        return helper()


def helper():
    return 1
`)

	nodes, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)

	byID := map[string]store.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	require.Contains(t, byID, "pkg.models")
	require.Contains(t, byID, "pkg.models.Base")
	require.Contains(t, byID, "pkg.models.Child")
	require.Contains(t, byID, "pkg.models.Child.speak")
	require.Contains(t, byID, "pkg.models.helper")
	assert.Equal(t, store.KindMethod, byID["pkg.models.Child.speak"].Kind)
	assert.Equal(t, store.KindFunction, byID["pkg.models.helper"].Kind)

	edges, err := s.GetEdges(store.EdgeFilter{Kind: store.EdgeInherits})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "pkg.models.Child", edges[0].SourceID)
	assert.Equal(t, "Base", edges[0].TargetID)

	calls, err := s.GetEdges(store.EdgeFilter{SourceID: "pkg.models.Child.speak", Kind: store.EdgeCalls})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "helper", calls[0].TargetID)
}

func TestIndexFile_DecoratorCapture(t *testing.T) {
	ix, s, root := newTestIndexer(t)
	rel := writeFile(t, root, "api.py", `@app.route("/health")
def health():
    return "ok"
`)

	nodes, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)

	var fn store.Node
	for _, n := range nodes {
		if n.Kind == store.KindFunction {
			fn = n
		}
	}
	require.Equal(t, []string{`app.route("/health")`}, fn.Decorators)

	edges, err := s.GetEdges(store.EdgeFilter{SourceID: fn.ID, Kind: store.EdgeDecorates})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "app.route", edges[0].TargetID)
}

func TestIndexFile_SkipsUnchangedContent(t *testing.T) {
	ix, s, root := newTestIndexer(t)
	rel := writeFile(t, root, "m.py", "def f():\n    pass\n")

	_, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)
	before, err := s.GetIndexedFile(rel)
	require.NoError(t, err)

	_, err = ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)
	after, err := s.GetIndexedFile(rel)
	require.NoError(t, err)
	assert.Equal(t, before.IndexedAt, after.IndexedAt)
}

func TestIndexFile_ImportWalk(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	rel := writeFile(t, root, "m.py", `import os
import pkg.sub as aliased
from collections import OrderedDict
from . import local_thing
`)

	_, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)

	edges, err := ix.store.GetEdges(store.EdgeFilter{SourceID: "m", Kind: store.EdgeImports})
	require.NoError(t, err)
	var targets []string
	for _, e := range edges {
		targets = append(targets, e.TargetID)
	}
	assert.Contains(t, targets, "os")
	assert.Contains(t, targets, "pkg.sub")
	assert.Contains(t, targets, "collections.OrderedDict")
}

func TestRemoveFile_UnlinksObservations(t *testing.T) {
	ix, s, root := newTestIndexer(t)
	rel := writeFile(t, root, "m.py", "def f():\n    pass\n")

	nodes, err := ix.IndexFile(context.Background(), root, rel, false)
	require.NoError(t, err)
	var fnID string
	for _, n := range nodes {
		if n.Kind == store.KindFunction {
			fnID = n.ID
		}
	}
	obsID, err := s.AddObservation(store.Observation{Content: "note", NodeID: fnID, Source: "user"})
	require.NoError(t, err)

	require.NoError(t, ix.RemoveFile(rel))

	_, err = s.GetNode(fnID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	obs, err := s.GetObservation(obsID)
	require.NoError(t, err)
	assert.Empty(t, obs.NodeID)
}

func TestIndexProject_WalksIgnoringDotDirs(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	writeFile(t, root, "a.py", "def a():\n    pass\n")
	writeFile(t, root, "pkg/b.py", "def b():\n    pass\n")
	writeFile(t, root, ".venv/ignored.py", "def ignored():\n    pass\n")

	paths, err := ix.IndexProject(context.Background(), root, false, 4)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = ix.store.GetNode("ignored")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
