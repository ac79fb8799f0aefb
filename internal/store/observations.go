package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Observation is a free-form note, optionally linked to a Node, tagged by
// coarse origin (spec.md §3).
type Observation struct {
	ID        int64
	Content   string
	NodeID    string // optional; empty means unlinked
	Tags      []string
	CreatedAt float64 // epoch seconds
	Source    string  // "user" | "claude" | "git" | "hook" | ...
}

const observationColumns = "id, content, node_id, tags, created_at, source"

func scanObservation(row interface{ Scan(...any) error }) (Observation, error) {
	var o Observation
	var nodeID sql.NullString
	var tagsJSON string
	if err := row.Scan(&o.ID, &o.Content, &nodeID, &tagsJSON, &o.CreatedAt, &o.Source); err != nil {
		return Observation{}, err
	}
	o.NodeID = nodeID.String
	if tagsJSON != "" {
		_ = json.Unmarshal([]byte(tagsJSON), &o.Tags)
	}
	return o, nil
}

// AddObservation inserts a new observation and returns its assigned id.
func (s *Store) AddObservation(o Observation) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tags := o.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("store: marshal tags: %w", err)
	}
	var nodeID any
	if o.NodeID != "" {
		nodeID = o.NodeID
	}
	res, err := s.db.Exec(`
		INSERT INTO observations (content, node_id, tags, created_at, source)
		VALUES (?, ?, ?, ?, ?)
	`, o.Content, nodeID, string(tagsJSON), o.CreatedAt, o.Source)
	if err != nil {
		return 0, fmt.Errorf("store: add_observation: %w", err)
	}
	return res.LastInsertId()
}

// GetObservation is a point lookup by id.
func (s *Store) GetObservation(id int64) (Observation, error) {
	row := s.db.QueryRow("SELECT "+observationColumns+" FROM observations WHERE id = ?", id)
	o, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return Observation{}, ErrNotFound
	}
	if err != nil {
		return Observation{}, fmt.Errorf("store: get_observation %d: %w", id, err)
	}
	return o, nil
}

// ListObservations returns observations matching an optional node_id and/or
// tag filter, newest-first by created_at. Tag matching is substring
// containment over the JSON-encoded tags array (spec.md §4.1's documented,
// conforming tradeoff: cheap, but a tag whose text itself contains a quote
// character could produce a false match).
func (s *Store) ListObservations(nodeID, tag string) ([]Observation, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if nodeID != "" {
		clauses = append(clauses, "node_id = ?")
		args = append(args, nodeID)
	}
	if tag != "" {
		clauses = append(clauses, "tags LIKE ?")
		args = append(args, "%\""+tag+"\"%")
	}
	query := "SELECT " + observationColumns + " FROM observations WHERE " +
		joinAnd(clauses) + " ORDER BY created_at DESC"
	return s.queryObservations(query, args...)
}

// ListObservationsSince returns observations with created_at strictly after
// since, newest-first, optionally filtered by source and capped at limit
// (0 = unlimited).
func (s *Store) ListObservationsSince(since float64, source string, limit int) ([]Observation, error) {
	clauses := []string{"created_at > ?"}
	args := []any{since}
	if source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, source)
	}
	query := "SELECT " + observationColumns + " FROM observations WHERE " +
		joinAnd(clauses) + " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryObservations(query, args...)
}

func (s *Store) queryObservations(query string, args ...any) ([]Observation, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan observation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteObservation removes an observation by id.
func (s *Store) DeleteObservation(id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec("DELETE FROM observations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete_observation %d: %w", id, err)
	}
	return nil
}

// UnlinkObservationsForNode nullifies node_id on observations that point at
// a Node being removed, without deleting the observations themselves
// (spec.md §3: "nullified (not deleted) when the referenced Node is
// removed").
func (s *Store) UnlinkObservationsForNode(nodeID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec("UPDATE observations SET node_id = NULL WHERE node_id = ?", nodeID)
	if err != nil {
		return fmt.Errorf("store: unlink observations for %s: %w", nodeID, err)
	}
	return nil
}

func joinAnd(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}
