// Package store is the embedded transactional relational store: the single
// source of truth for a project's Nodes, Edges, Observations, and
// IndexedFiles. It is a thin layer over database/sql + modernc.org/sqlite,
// following the table-creation and prepared-statement style of
// mache's internal/graph/sqlite_graph.go and internal/ingest/sqlite_writer.go.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by point lookups that miss.
var ErrNotFound = errors.New("store: not found")

// ErrAmbiguous is returned by resolve_target when more than one Node
// shares the same short name.
var ErrAmbiguous = errors.New("store: ambiguous match")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	name        TEXT NOT NULL,
	file_path   TEXT NOT NULL,
	line_start  INTEGER NOT NULL,
	line_end    INTEGER NOT NULL,
	parent_id   TEXT,
	signature   TEXT,
	docstring   TEXT,
	decorators  TEXT NOT NULL DEFAULT '[]',
	is_external INTEGER NOT NULL DEFAULT 0,
	file_hash   TEXT NOT NULL,
	indexed_at  REAL NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(file_path);
CREATE INDEX IF NOT EXISTS idx_nodes_kind      ON nodes(kind);
CREATE INDEX IF NOT EXISTS idx_nodes_name      ON nodes(name);
CREATE INDEX IF NOT EXISTS idx_nodes_parent    ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_external  ON nodes(is_external);

CREATE TABLE IF NOT EXISTS edges (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	kind      TEXT NOT NULL,
	file_path TEXT NOT NULL,
	line      INTEGER NOT NULL,
	resolved  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_id, target_id, kind)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_edges_kind   ON edges(kind);
CREATE INDEX IF NOT EXISTS idx_edges_file   ON edges(file_path);

CREATE TABLE IF NOT EXISTS observations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	node_id    TEXT,
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at REAL NOT NULL,
	source     TEXT NOT NULL DEFAULT 'user'
);
CREATE INDEX IF NOT EXISTS idx_observations_node    ON observations(node_id);
CREATE INDEX IF NOT EXISTS idx_observations_source  ON observations(source);
CREATE INDEX IF NOT EXISTS idx_observations_created ON observations(created_at);

CREATE TABLE IF NOT EXISTS indexed_files (
	file_path  TEXT PRIMARY KEY,
	file_hash  TEXT NOT NULL,
	indexed_at REAL NOT NULL,
	node_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_indexed_files_indexed_at ON indexed_files(indexed_at);
`

// Store wraps a single project's SQLite database. Reads may run concurrently
// with writes; writers are serialized through writeMu so that an index_file
// batch is never observed half-applied (mirrors the teacher's single
// transaction-per-batch discipline in sqlite_writer.go).
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if necessary) the SQLite database at path. Pass
// ":memory:" for an ephemeral, process-local store (tests, short-lived
// workflows).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if path != ":memory:" {
		// WAL mode lets readers proceed against the last-committed snapshot
		// while a writer holds its transaction open; a single connection
		// would force every read to queue behind in-flight writes and
		// defeat that, so the pool allows several as the teacher's own
		// internal/graph/sqlite_graph.go does. Writes are still serialized
		// above the driver by writeMu, so this does not risk interleaving
		// two write transactions.
		db.SetMaxOpenConns(4)
	} else {
		// Every SQLite connection to ":memory:" opens its own empty
		// database, so the pool is held to one connection.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats summarizes row counts across all four tables.
type Stats struct {
	Nodes         int
	Edges         int
	Observations  int
	IndexedFiles  int
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&st.Nodes); err != nil {
		return st, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&st.Edges); err != nil {
		return st, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM observations").Scan(&st.Observations); err != nil {
		return st, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM indexed_files").Scan(&st.IndexedFiles); err != nil {
		return st, err
	}
	return st, nil
}
