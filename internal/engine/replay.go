package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/roach88/actiongraph/internal/compiler"
	"github.com/roach88/actiongraph/internal/store"
)

// Replay rebuilds an aggregator from a session's statement log.
//
// Replay uses the same path as live entry: each logged statement is
// parsed and accepted in seq order with its original seq, so the rebuilt
// system is identical to the one that was running. Nothing is written
// during replay. If the log has a stored snapshot, the rebuilt model's
// hash must match it or Replay returns a REPLAY_DIVERGED RuntimeError.
//
// The returned aggregator is attached to the session: statements added
// afterwards are appended to the same log, numbered after its last seq.
func Replay(ctx context.Context, s *store.Store, session string, opts ...Option) (*Aggregator, error) {
	state, err := s.GetSessionState(ctx, session)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewSessionNotFoundError(session, err)
		}
		return nil, err
	}

	last, err := s.GetLastSeq(ctx)
	if err != nil {
		return nil, err
	}

	a := New(opts...)
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, rec := range state.Statements {
		st, err := compiler.Parse(rec.Text)
		if err != nil {
			return nil, err
		}
		if err := a.accept(ctx, Entry{Seq: rec.Seq, Statement: st}, false); err != nil {
			return nil, err
		}
	}

	if state.Latest != nil {
		snap := a.current.Load()
		m, err := snap.sys.Model(snap.statements)
		if err != nil {
			return nil, err
		}
		if m.Hash != state.Latest.Hash {
			return nil, NewReplayDivergedError(session, state.Latest.Seq, state.Latest.Hash, m.Hash)
		}
	}

	a.clock.advanceTo(last)
	a.store, a.session = s, session
	a.logger.Info("session replayed",
		zap.String("session", session),
		zap.Int("statements", len(state.Statements)),
		zap.Int64("last_seq", last))
	return a, nil
}
