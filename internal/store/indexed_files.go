package store

import (
	"database/sql"
	"fmt"
)

// IndexedFile is one row per ingested file (spec.md §3).
type IndexedFile struct {
	FilePath  string
	FileHash  string
	IndexedAt float64
	NodeCount int
}

const indexedFileColumns = "file_path, file_hash, indexed_at, node_count"

func scanIndexedFile(row interface{ Scan(...any) error }) (IndexedFile, error) {
	var f IndexedFile
	if err := row.Scan(&f.FilePath, &f.FileHash, &f.IndexedAt, &f.NodeCount); err != nil {
		return IndexedFile{}, err
	}
	return f, nil
}

// UpsertIndexedFile inserts or replaces the tracking row for a file.
func (s *Store) UpsertIndexedFile(f IndexedFile) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO indexed_files (file_path, file_hash, indexed_at, node_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_hash=excluded.file_hash, indexed_at=excluded.indexed_at, node_count=excluded.node_count
	`, f.FilePath, f.FileHash, f.IndexedAt, f.NodeCount)
	if err != nil {
		return fmt.Errorf("store: upsert_indexed_file %s: %w", f.FilePath, err)
	}
	return nil
}

// GetIndexedFile is a point lookup by file_path.
func (s *Store) GetIndexedFile(path string) (IndexedFile, error) {
	row := s.db.QueryRow("SELECT "+indexedFileColumns+" FROM indexed_files WHERE file_path = ?", path)
	f, err := scanIndexedFile(row)
	if err == sql.ErrNoRows {
		return IndexedFile{}, ErrNotFound
	}
	if err != nil {
		return IndexedFile{}, fmt.Errorf("store: get_indexed_file %s: %w", path, err)
	}
	return f, nil
}

// DeleteIndexedFile removes the tracking row for a file.
func (s *Store) DeleteIndexedFile(path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec("DELETE FROM indexed_files WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("store: delete_indexed_file %s: %w", path, err)
	}
	return nil
}

// ListIndexedFiles returns every tracked file, lexicographic by path.
func (s *Store) ListIndexedFiles() ([]IndexedFile, error) {
	rows, err := s.db.Query("SELECT " + indexedFileColumns + " FROM indexed_files ORDER BY file_path ASC")
	if err != nil {
		return nil, fmt.Errorf("store: list_indexed_files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []IndexedFile
	for rows.Next() {
		f, err := scanIndexedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan indexed file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListRecentlyIndexedFiles returns files indexed strictly after since,
// newest-first, capped at limit (0 = unlimited).
func (s *Store) ListRecentlyIndexedFiles(since float64, limit int) ([]IndexedFile, error) {
	query := "SELECT " + indexedFileColumns + " FROM indexed_files WHERE indexed_at > ? ORDER BY indexed_at DESC"
	args := []any{since}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list_recently_indexed_files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []IndexedFile
	for rows.Next() {
		f, err := scanIndexedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan indexed file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
