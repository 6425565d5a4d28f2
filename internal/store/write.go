package store

import (
	"context"
	"fmt"

	"github.com/roach88/actiongraph/internal/ir"
)

// OpenSession records a session. Uses ON CONFLICT(id) DO NOTHING, so
// reopening an existing session is a no-op.
func (s *Store) OpenSession(ctx context.Context, id string, seq int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_seq)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, seq)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// AppendStatement appends an accepted statement to a session's log.
// Returns inserted=false if a statement with the same seq already exists
// in the session (idempotent replay).
//
// The session must exist (foreign key constraint).
func (s *Store) AppendStatement(ctx context.Context, rec StatementRecord) (bool, error) {
	id, err := ir.StatementID(rec.Text, rec.Seq)
	if err != nil {
		return false, fmt.Errorf("append statement: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO statements (id, session_id, seq, kind, text)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, id, rec.SessionID, rec.Seq, rec.Kind, rec.Text)
	if err != nil {
		return false, fmt.Errorf("append statement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append statement: rows affected: %w", err)
	}
	return n > 0, nil
}

// WriteModel stores a snapshot of the compiled model at seq.
// The snapshot is serialized to canonical JSON. Duplicate (session, seq)
// writes are silently ignored.
func (s *Store) WriteModel(ctx context.Context, sessionID string, seq int64, m ir.Model) error {
	hash := m.Hash
	if hash == "" {
		var err error
		hash, err = ir.ModelHash(m)
		if err != nil {
			return fmt.Errorf("write model: %w", err)
		}
	}

	snapshot, err := marshalModel(m)
	if err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (session_id, seq, hash, snapshot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, sessionID, seq, hash, snapshot)
	if err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
