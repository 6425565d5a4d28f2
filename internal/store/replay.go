package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SessionState is everything needed to rebuild a session.
type SessionState struct {
	Session    Session
	Statements []StatementRecord
	Latest     *ModelRecord // nil if no snapshot was written
}

// GetSessionState reads a session's log and its latest snapshot.
// Returns ErrNotFound if the session does not exist.
func (s *Store) GetSessionState(ctx context.Context, sessionID string) (SessionState, error) {
	state := SessionState{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_seq FROM sessions WHERE id = ?
	`, sessionID).Scan(&state.Session.ID, &state.Session.CreatedSeq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return state, fmt.Errorf("get session state: %w", err)
	}

	state.Statements, err = s.ReadStatements(ctx, sessionID)
	if err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}
	state.Session.Statements = len(state.Statements)
	if n := len(state.Statements); n > 0 {
		state.Session.LastSeq = state.Statements[n-1].Seq
	}

	latest, err := s.LatestModel(ctx, sessionID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return state, fmt.Errorf("get session state: %w", err)
	default:
		state.Latest = &latest
	}
	return state, nil
}

// GetLastSeq returns the highest seq recorded anywhere in the store, so a
// new clock can continue after it. Returns 0 for an empty store.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT created_seq AS seq FROM sessions
			UNION ALL SELECT seq FROM statements
			UNION ALL SELECT seq FROM models
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}
