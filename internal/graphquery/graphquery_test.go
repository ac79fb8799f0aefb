package graphquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

func newTestQuerier(t *testing.T) (*Querier, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s), s
}

func mustNode(t *testing.T, s *store.Store, id string, kind store.NodeKind) {
	t.Helper()
	require.NoError(t, s.UpsertNode(store.Node{ID: id, Kind: kind, Name: shortOf(id), FilePath: "/p.py", FileHash: "h"}))
}

func shortOf(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '.' {
			return id[i+1:]
		}
	}
	return id
}

func TestCallersCallees(t *testing.T) {
	q, s := newTestQuerier(t)
	mustNode(t, s, "m.a", store.KindFunction)
	mustNode(t, s, "m.b", store.KindFunction)
	mustNode(t, s, "m.c", store.KindFunction)
	require.NoError(t, s.UpsertEdge(store.Edge{SourceID: "m.a", TargetID: "m.b", Kind: store.EdgeCalls, FilePath: "/p.py"}))
	require.NoError(t, s.UpsertEdge(store.Edge{SourceID: "m.b", TargetID: "m.c", Kind: store.EdgeCalls, FilePath: "/p.py"}))

	callees, err := q.Callees("m.a", 1)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, "m.b", callees[0].ID)

	callees2, err := q.Callees("m.a", 2)
	require.NoError(t, err)
	ids := []string{callees2[0].ID}
	if len(callees2) > 1 {
		ids = append(ids, callees2[1].ID)
	}
	assert.ElementsMatch(t, []string{"m.b", "m.c"}, ids)

	callers, err := q.Callers("m.c", 1)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "m.b", callers[0].ID)
}

func TestSuperclassesSubclasses(t *testing.T) {
	q, s := newTestQuerier(t)
	mustNode(t, s, "m.Base", store.KindClass)
	mustNode(t, s, "m.Child", store.KindClass)
	require.NoError(t, s.UpsertEdge(store.Edge{SourceID: "m.Child", TargetID: "m.Base", Kind: store.EdgeInherits, FilePath: "/p.py"}))

	supers, err := q.Superclasses("m.Child", 1)
	require.NoError(t, err)
	require.Len(t, supers, 1)
	assert.Equal(t, "m.Base", supers[0].ID)

	subs, err := q.Subclasses("m.Base", 1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "m.Child", subs[0].ID)
}

func TestTraverse_DepthZeroReturnsNothing(t *testing.T) {
	q, s := newTestQuerier(t)
	mustNode(t, s, "m.a", store.KindFunction)
	mustNode(t, s, "m.b", store.KindFunction)
	require.NoError(t, s.UpsertEdge(store.Edge{SourceID: "m.a", TargetID: "m.b", Kind: store.EdgeCalls, FilePath: "/p.py"}))

	callees, err := q.Callees("m.a", 0)
	require.NoError(t, err)
	assert.Empty(t, callees)
}

func TestTraverse_UnresolvedTargetExcluded(t *testing.T) {
	q, s := newTestQuerier(t)
	mustNode(t, s, "m.a", store.KindFunction)
	require.NoError(t, s.UpsertEdge(store.Edge{SourceID: "m.a", TargetID: "unknown_fn", Kind: store.EdgeCalls, FilePath: "/p.py"}))

	callees, err := q.Callees("m.a", 1)
	require.NoError(t, err)
	assert.Empty(t, callees)
}

func TestResolveTarget(t *testing.T) {
	q, s := newTestQuerier(t)
	mustNode(t, s, "m.unique", store.KindFunction)
	mustNode(t, s, "m.dup", store.KindFunction)
	mustNode(t, s, "n.dup", store.KindFunction)

	n, err := q.ResolveTarget("unique")
	require.NoError(t, err)
	assert.Equal(t, "m.unique", n.ID)

	_, err = q.ResolveTarget("dup")
	assert.ErrorIs(t, err, store.ErrAmbiguous)

	_, err = q.ResolveTarget("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveTarget_ExactIDMatchTriedFirst(t *testing.T) {
	q, s := newTestQuerier(t)
	// Two nodes share the short name "dup" so a short-name search alone
	// would be ambiguous — but resolving by the fully-qualified id of one
	// of them must still succeed.
	mustNode(t, s, "m.dup", store.KindFunction)
	mustNode(t, s, "n.dup", store.KindFunction)

	n, err := q.ResolveTarget("m.dup")
	require.NoError(t, err)
	assert.Equal(t, "m.dup", n.ID)
}
