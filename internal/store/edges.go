package store

import (
	"fmt"
	"strings"
)

// EdgeKind enumerates the directed relations the indexer extracts.
type EdgeKind string

const (
	EdgeCalls     EdgeKind = "calls"
	EdgeImports   EdgeKind = "imports"
	EdgeInherits  EdgeKind = "inherits"
	EdgeDecorates EdgeKind = "decorates"
)

// Edge is a directed relation between two node ids (spec.md §3). TargetID
// may be unresolved — it refers to no Node when the call/import target
// could not be bound syntactically.
type Edge struct {
	SourceID string
	TargetID string
	Kind     EdgeKind
	FilePath string
	Line     int
	Resolved bool
}

const edgeColumns = "source_id, target_id, kind, file_path, line, resolved"

func scanEdge(row interface{ Scan(...any) error }) (Edge, error) {
	var e Edge
	var resolved int
	if err := row.Scan(&e.SourceID, &e.TargetID, &e.Kind, &e.FilePath, &e.Line, &resolved); err != nil {
		return Edge{}, err
	}
	e.Resolved = resolved != 0
	return e, nil
}

// UpsertEdge inserts or updates location metadata for one edge. The edge
// uniqueness invariant (source_id, target_id, kind) is enforced by the
// table's primary key — a re-insert never creates a duplicate.
func (s *Store) UpsertEdge(e Edge) error {
	return s.UpsertEdges([]Edge{e})
}

// UpsertEdges inserts or updates a batch of edges in one transaction.
func (s *Store) UpsertEdges(es []Edge) error {
	if len(es) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin upsert_edges: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO edges (source_id, target_id, kind, file_path, line, resolved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, kind) DO UPDATE SET
			file_path=excluded.file_path, line=excluded.line, resolved=excluded.resolved
	`)
	if err != nil {
		return fmt.Errorf("store: prepare upsert_edges: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range es {
		resolved := 0
		if e.Resolved {
			resolved = 1
		}
		if _, err := stmt.Exec(e.SourceID, e.TargetID, string(e.Kind), e.FilePath, e.Line, resolved); err != nil {
			return fmt.Errorf("store: upsert edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return tx.Commit()
}

// EdgeFilter is the conjunctive filter accepted by GetEdges. Empty fields
// are unconstrained.
type EdgeFilter struct {
	SourceID string
	TargetID string
	Kind     EdgeKind
}

// GetEdges applies a conjunctive filter over the edges table.
func (s *Store) GetEdges(f EdgeFilter) ([]Edge, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.SourceID != "" {
		clauses = append(clauses, "source_id = ?")
		args = append(args, f.SourceID)
	}
	if f.TargetID != "" {
		clauses = append(clauses, "target_id = ?")
		args = append(args, f.TargetID)
	}
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(f.Kind))
	}
	query := "SELECT " + edgeColumns + " FROM edges WHERE " + strings.Join(clauses, " AND ")
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: get_edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEdgesForFile removes every edge whose file_path matches — the
// location where the reference was made, not the location of the target.
func (s *Store) DeleteEdgesForFile(path string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.Exec("DELETE FROM edges WHERE file_path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("store: delete_edges_for_file %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
