package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ObservationsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.AddObservation(Observation{Content: "first", Source: "user", CreatedAt: 1})
	require.NoError(t, err)
	id2, err := s.AddObservation(Observation{Content: "second", Source: "user", CreatedAt: 2})
	require.NoError(t, err)

	obs, err := s.ListObservations("", "")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, id2, obs[0].ID)
	assert.Equal(t, id1, obs[1].ID)
}

func TestStore_ObservationsTagFilter(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddObservation(Observation{Content: "tagged", Tags: []string{"decision", "auth"}, Source: "claude", CreatedAt: 1})
	require.NoError(t, err)
	_, err = s.AddObservation(Observation{Content: "untagged", Source: "claude", CreatedAt: 2})
	require.NoError(t, err)

	obs, err := s.ListObservations("", "decision")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "tagged", obs[0].Content)
}

func TestStore_ListObservationsSinceExclusive(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddObservation(Observation{Content: "old", Source: "git", CreatedAt: 100})
	require.NoError(t, err)
	_, err = s.AddObservation(Observation{Content: "new", Source: "git", CreatedAt: 200})
	require.NoError(t, err)

	obs, err := s.ListObservationsSince(100, "git", 0)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "new", obs[0].Content)
}

func TestStore_UnlinkObservationsForNode(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertNode(Node{ID: "m.f", Kind: KindFunction, Name: "f", FilePath: "/p.py", FileHash: "h"}))
	id, err := s.AddObservation(Observation{Content: "linked", NodeID: "m.f", Source: "user", CreatedAt: 1})
	require.NoError(t, err)

	_, err = s.DeleteNodesForFile("/p.py")
	require.NoError(t, err)
	require.NoError(t, s.UnlinkObservationsForNode("m.f"))

	got, err := s.GetObservation(id)
	require.NoError(t, err)
	assert.Empty(t, got.NodeID)
}

func TestStore_DeleteObservation(t *testing.T) {
	s := newTestStore(t)
	id, err := s.AddObservation(Observation{Content: "x", Source: "user", CreatedAt: 1})
	require.NoError(t, err)
	require.NoError(t, s.DeleteObservation(id))
	_, err = s.GetObservation(id)
	assert.ErrorIs(t, err, ErrNotFound)
}
