// Package observations is a thin service layer over store.Store's
// observation rows (spec.md §4.6): it owns timestamping and the
// hook-observation deduplication rule so callers never construct a raw
// store.Observation by hand. Grounded on mache's cmd/agent.go, which
// layers a small assembly step over raw store access rather than exposing
// the store type directly to the CLI.
package observations

import (
	"fmt"
	"time"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// Service adds observations with server-assigned timestamps and applies
// the hook-source deduplication rule.
type Service struct {
	store *store.Store
}

// New returns a Service backed by s.
func New(s *store.Store) *Service {
	return &Service{store: s}
}

// Add records a new observation. CreatedAt is always stamped by the
// service with the current time; callers cannot supply it. An empty
// source defaults to "user".
func (svc *Service) Add(content, nodeID string, tags []string, source string) (int64, error) {
	if source == "" {
		source = "user"
	}
	return svc.store.AddObservation(store.Observation{
		Content:   content,
		NodeID:    nodeID,
		Tags:      tags,
		Source:    source,
		CreatedAt: nowSeconds(),
	})
}

// AddHookObservation records an observation from an automated hook
// (source "hook"), first dropping a write-time repeat: a new hook
// observation for the same node_id is dropped when the most recent
// existing hook observation for that node_id has identical content, so
// repeated file-save hooks on an unchanged node do not flood the store.
// This is separate from the read-time content dedupe the resume renderer
// applies (resume.dedupeHookObservations).
func (svc *Service) AddHookObservation(content, nodeID string, tags []string) (int64, bool, error) {
	existing, err := svc.store.ListObservations(nodeID, "")
	if err != nil {
		return 0, false, fmt.Errorf("observations: list for dedup: %w", err)
	}
	for _, o := range existing {
		if o.Source != "hook" {
			continue
		}
		if o.Content == content {
			return o.ID, false, nil // duplicate: nothing written
		}
		break // existing is newest-first; first hook row seen is the most recent
	}
	id, err := svc.Add(content, nodeID, tags, "hook")
	return id, true, err
}

// List returns observations filtered by an optional node id and/or tag,
// newest-first.
func (svc *Service) List(nodeID, tag string) ([]store.Observation, error) {
	return svc.store.ListObservations(nodeID, tag)
}

// Since returns observations recorded strictly after since, optionally
// filtered by source, newest-first, capped at limit (0 = unlimited).
func (svc *Service) Since(since float64, source string, limit int) ([]store.Observation, error) {
	return svc.store.ListObservationsSince(since, source, limit)
}

// Delete removes an observation by id.
func (svc *Service) Delete(id int64) error {
	return svc.store.DeleteObservation(id)
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
