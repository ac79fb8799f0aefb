package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NodeKind enumerates the structural entities the indexer extracts.
type NodeKind string

const (
	KindModule   NodeKind = "module"
	KindClass    NodeKind = "class"
	KindFunction NodeKind = "function"
	KindMethod   NodeKind = "method"
)

// Node is a structural entity extracted from source (spec.md §3).
type Node struct {
	ID         string
	Kind       NodeKind
	Name       string
	FilePath   string
	LineStart  int
	LineEnd    int
	ParentID   string // empty at module level
	Signature  string // empty for classes and modules
	Docstring  string
	Decorators []string
	IsExternal bool
	FileHash   string
	IndexedAt  float64 // epoch seconds
}

func scanNode(row interface{ Scan(...any) error }) (Node, error) {
	var n Node
	var parentID, signature, docstring sql.NullString
	var decoratorsJSON string
	var isExternal int
	if err := row.Scan(&n.ID, &n.Kind, &n.Name, &n.FilePath, &n.LineStart, &n.LineEnd,
		&parentID, &signature, &docstring, &decoratorsJSON, &isExternal, &n.FileHash, &n.IndexedAt); err != nil {
		return Node{}, err
	}
	n.ParentID = parentID.String
	n.Signature = signature.String
	n.Docstring = docstring.String
	n.IsExternal = isExternal != 0
	if decoratorsJSON != "" {
		_ = json.Unmarshal([]byte(decoratorsJSON), &n.Decorators)
	}
	return n, nil
}

const nodeColumns = "id, kind, name, file_path, line_start, line_end, parent_id, signature, docstring, decorators, is_external, file_hash, indexed_at"

// UpsertNode inserts or replaces a single Node. Idempotent by primary key.
func (s *Store) UpsertNode(n Node) error {
	return s.UpsertNodes([]Node{n})
}

// UpsertNodes inserts or replaces a batch of Nodes in one transaction.
func (s *Store) UpsertNodes(ns []Node) error {
	if len(ns) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin upsert_nodes: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

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
		return fmt.Errorf("store: prepare upsert_nodes: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range ns {
		decorators := n.Decorators
		if decorators == nil {
			decorators = []string{}
		}
		decoratorsJSON, err := json.Marshal(decorators)
		if err != nil {
			return fmt.Errorf("store: marshal decorators for %s: %w", n.ID, err)
		}
		var parentID any
		if n.ParentID != "" {
			parentID = n.ParentID
		}
		isExternal := 0
		if n.IsExternal {
			isExternal = 1
		}
		indexedAt := n.IndexedAt
		if indexedAt == 0 {
			indexedAt = float64(time.Now().UnixNano()) / 1e9
		}
		if _, err := stmt.Exec(n.ID, string(n.Kind), n.Name, n.FilePath, n.LineStart, n.LineEnd,
			parentID, nullableString(n.Signature), nullableString(n.Docstring), string(decoratorsJSON),
			isExternal, n.FileHash, indexedAt); err != nil {
			return fmt.Errorf("store: upsert node %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetNode is a point lookup by primary key.
func (s *Store) GetNode(id string) (Node, error) {
	row := s.db.QueryRow("SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return Node{}, ErrNotFound
	}
	if err != nil {
		return Node{}, fmt.Errorf("store: get_node %s: %w", id, err)
	}
	return n, nil
}

// NodeFilter is the conjunctive filter accepted by ListNodes.
type NodeFilter struct {
	FilePath string
	Kind     NodeKind
	Name     string
	External *bool
}

// ListNodes applies a conjunctive filter over the nodes table; result order
// is unspecified (spec.md §4.1).
func (s *Store) ListNodes(f NodeFilter) ([]Node, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.FilePath != "" {
		clauses = append(clauses, "file_path = ?")
		args = append(args, f.FilePath)
	}
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, f.Name)
	}
	if f.External != nil {
		clauses = append(clauses, "is_external = ?")
		if *f.External {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	query := "SELECT " + nodeColumns + " FROM nodes WHERE " + strings.Join(clauses, " AND ")
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list_nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNodesForFile removes every Node row with the given file_path.
// Foreign-key cascade removes descendants whose parent_id chain leads back
// to a module in this file, but edges are untouched here — see
// DeleteEdgesForFile (spec.md §3 invariant: edges are purged separately).
func (s *Store) DeleteNodesForFile(path string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.Exec("DELETE FROM nodes WHERE file_path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("store: delete_nodes_for_file %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
