package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// execer is the narrow *sql.Tx capability txUpsertNodes/txUpsertEdges need.
type execer interface {
	Prepare(query string) (*sql.Stmt, error)
}

// ReplaceFile atomically purges path's existing nodes and edges and writes
// its freshly-extracted nodes, edges, and indexed_files row in a single
// transaction. Concurrent readers therefore only ever observe path's
// pre-reindex state or its post-reindex state, never a mixture — a purge
// with stale edges still attached, or new nodes with no edges yet attached
// (spec.md §4.1/§5). Grounded on the teacher's internal/ingest/sqlite_writer.go,
// which holds one *sql.Tx open across an entire file's delete-then-insert
// batch rather than auto-committing each step.
func (s *Store) ReplaceFile(path string, nodes []Node, edges []Edge, f IndexedFile) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin replace_file %s: %w", path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM nodes WHERE file_path = ?", path); err != nil {
		return fmt.Errorf("store: replace_file delete nodes %s: %w", path, err)
	}
	if _, err := tx.Exec("DELETE FROM edges WHERE file_path = ?", path); err != nil {
		return fmt.Errorf("store: replace_file delete edges %s: %w", path, err)
	}

	if err := txUpsertNodes(tx, nodes); err != nil {
		return fmt.Errorf("store: replace_file %s: %w", path, err)
	}
	if err := txUpsertEdges(tx, edges); err != nil {
		return fmt.Errorf("store: replace_file %s: %w", path, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO indexed_files (file_path, file_hash, indexed_at, node_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash=excluded.file_hash, indexed_at=excluded.indexed_at, node_count=excluded.node_count
	`, f.FilePath, f.FileHash, f.IndexedAt, f.NodeCount); err != nil {
		return fmt.Errorf("store: replace_file upsert indexed_file %s: %w", path, err)
	}

	return tx.Commit()
}

func txUpsertNodes(tx execer, ns []Node) error {
	if len(ns) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, kind, name, file_path, line_start, line_end, parent_id, signature, docstring, decorators, is_external, file_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, name=excluded.name, file_path=excluded.file_path,
			line_start=excluded.line_start, line_end=excluded.line_end, parent_id=excluded.parent_id,
			signature=excluded.signature, docstring=excluded.docstring, decorators=excluded.decorators,
			is_external=excluded.is_external, file_hash=excluded.file_hash, indexed_at=excluded.indexed_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert_nodes: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range ns {
		decorators := n.Decorators
		if decorators == nil {
			decorators = []string{}
		}
		decoratorsJSON, err := json.Marshal(decorators)
		if err != nil {
			return fmt.Errorf("marshal decorators for %s: %w", n.ID, err)
		}
		var parentID any
		if n.ParentID != "" {
			parentID = n.ParentID
		}
		isExternal := 0
		if n.IsExternal {
			isExternal = 1
		}
		if _, err := stmt.Exec(n.ID, string(n.Kind), n.Name, n.FilePath, n.LineStart, n.LineEnd,
			parentID, nullableString(n.Signature), nullableString(n.Docstring), string(decoratorsJSON),
			isExternal, n.FileHash, n.IndexedAt); err != nil {
			return fmt.Errorf("upsert node %s: %w", n.ID, err)
		}
	}
	return nil
}

func txUpsertEdges(tx execer, es []Edge) error {
	if len(es) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO edges (source_id, target_id, kind, file_path, line, resolved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, kind) DO UPDATE SET
			file_path=excluded.file_path, line=excluded.line, resolved=excluded.resolved
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert_edges: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range es {
		resolved := 0
		if e.Resolved {
			resolved = 1
		}
		if _, err := stmt.Exec(e.SourceID, e.TargetID, string(e.Kind), e.FilePath, e.Line, resolved); err != nil {
			return fmt.Errorf("upsert edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}
