package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Session summarizes one statement log.
type Session struct {
	ID         string `json:"id"`
	CreatedSeq int64  `json:"created_seq"`
	Statements int    `json:"statements"`
	LastSeq    int64  `json:"last_seq"`
}

// StatementRecord is one logged statement.
type StatementRecord struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
}

// ModelRecord is one stored model snapshot.
type ModelRecord struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Hash      string `json:"hash"`
	Snapshot  string `json:"-"`
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReadStatements returns a session's statements ordered by seq.
// Returns an empty slice (not nil) if the session has none.
func (s *Store) ReadStatements(ctx context.Context, sessionID string) ([]StatementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, text
		FROM statements
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	records := []StatementRecord{}
	for rows.Next() {
		var r StatementRecord
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.Kind, &r.Text); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return records, nil
}

// LatestModel returns the snapshot with the highest seq for a session.
// Returns ErrNotFound if none has been written.
func (s *Store) LatestModel(ctx context.Context, sessionID string) (ModelRecord, error) {
	var r ModelRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, seq, hash, snapshot
		FROM models
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, sessionID).Scan(&r.SessionID, &r.Seq, &r.Hash, &r.Snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelRecord{}, fmt.Errorf("latest model for %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return ModelRecord{}, fmt.Errorf("latest model: %w", err)
	}
	return r, nil
}

// Sessions lists every session ordered by creation seq, then id.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_seq, COUNT(st.seq), COALESCE(MAX(st.seq), 0)
		FROM sessions s
		LEFT JOIN statements st ON st.session_id = s.id
		GROUP BY s.id, s.created_seq
		ORDER BY s.created_seq ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.CreatedSeq, &sess.Statements, &sess.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// HasSession reports whether a session exists.
func (s *Store) HasSession(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has session: %w", err)
	}
	return n > 0, nil
}
