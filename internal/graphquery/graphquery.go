// Package graphquery implements the bounded-depth graph-query layer
// (spec.md §4.4): callers/callees/imports/importers/superclasses/subclasses
// traversal and name resolution over a store.Store. Grounded on mache's
// internal/graph/graph.go MemoryStore query methods, adapted from its
// generic multi-hop graph walk to the four fixed relation kinds
// ContextGraph's schema defines.
package graphquery

import (
	"fmt"

	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// Querier answers bounded-depth questions over a Store's nodes and edges.
type Querier struct {
	store *store.Store
}

// New returns a Querier backed by s.
func New(s *store.Store) *Querier {
	return &Querier{store: s}
}

// direction selects which side of an edge row to follow.
type direction int

const (
	forward  direction = iota // source_id -> target_id
	backward                  // target_id -> source_id
)

// Callers returns every node that calls id, up to depth hops away.
func (q *Querier) Callers(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeCalls, backward, depth)
}

// Callees returns every node id calls, up to depth hops away.
func (q *Querier) Callees(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeCalls, forward, depth)
}

// Importers returns every module that imports id.
func (q *Querier) Importers(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeImports, backward, depth)
}

// Imports returns every target id's module imports.
func (q *Querier) Imports(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeImports, forward, depth)
}

// Superclasses returns the classes id inherits from, up to depth hops.
func (q *Querier) Superclasses(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeInherits, forward, depth)
}

// Subclasses returns the classes that inherit from id, up to depth hops.
func (q *Querier) Subclasses(id string, depth int) ([]store.Node, error) {
	return q.traverse(id, store.EdgeInherits, backward, depth)
}

// traverse performs a breadth-first walk of kind-typed edges from id,
// bounded by depth (spec.md §4.4: depth <= 0 returns no results beyond id
// itself; unresolved edge targets that name no Node are silently excluded
// from the result, not treated as an error).
func (q *Querier) traverse(id string, kind store.EdgeKind, dir direction, depth int) ([]store.Node, error) {
	if depth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{id: true}
	frontier := []string{id}
	var result []store.Node

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, cur := range frontier {
			ids, err := q.neighbors(cur, kind, dir)
			if err != nil {
				return nil, err
			}
			for _, nid := range ids {
				if visited[nid] {
					continue
				}
				visited[nid] = true
				n, err := q.store.GetNode(nid)
				if err == store.ErrNotFound {
					continue // unresolved target: no Node exists for it
				}
				if err != nil {
					return nil, fmt.Errorf("graphquery: lookup %s: %w", nid, err)
				}
				result = append(result, n)
				next = append(next, nid)
			}
		}
		frontier = next
	}
	return result, nil
}

func (q *Querier) neighbors(id string, kind store.EdgeKind, dir direction) ([]string, error) {
	var f store.EdgeFilter
	f.Kind = kind
	if dir == forward {
		f.SourceID = id
	} else {
		f.TargetID = id
	}
	edges, err := q.store.GetEdges(f)
	if err != nil {
		return nil, fmt.Errorf("graphquery: get_edges: %w", err)
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		if dir == forward {
			out = append(out, e.TargetID)
		} else {
			out = append(out, e.SourceID)
		}
	}
	return out, nil
}

// ResolveTarget finds the Node whose id equals name, or — failing that —
// the sole Node whose short name (the trailing dotted component of its id)
// matches name. Returns store.ErrNotFound when neither matches anything,
// store.ErrAmbiguous when more than one node shares the short name
// (spec.md §4.4).
func (q *Querier) ResolveTarget(name string) (store.Node, error) {
	if n, err := q.store.GetNode(name); err == nil {
		return n, nil
	} else if err != store.ErrNotFound {
		return store.Node{}, fmt.Errorf("graphquery: resolve_target %s: %w", name, err)
	}

	candidates, err := q.store.ListNodes(store.NodeFilter{Name: name})
	if err != nil {
		return store.Node{}, fmt.Errorf("graphquery: resolve_target %s: %w", name, err)
	}
	switch len(candidates) {
	case 0:
		return store.Node{}, store.ErrNotFound
	case 1:
		return candidates[0], nil
	default:
		return store.Node{}, store.ErrAmbiguous
	}
}
