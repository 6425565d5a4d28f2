package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/actiongraph/internal/compiler"
	"github.com/roach88/actiongraph/internal/engine"
	"github.com/roach88/actiongraph/internal/store"
	"github.com/roach88/actiongraph/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger *zap.Logger
}

// New creates a harness that logs through logger. A nil logger is
// replaced by a no-op logger.
func New(logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with logging disabled.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a fixed session
// ID, so the same scenario always produces the same log and model hash.
//
// Execution flow:
// 1. Create fresh in-memory store and attach an aggregator to it
// 2. Add statements in order, recording rejections
// 3. Snapshot the model and validate the accepted statements
// 4. Evaluate queries
// 5. Replay the session and compare model hashes
// 6. Check expectations
//
// The returned error is reserved for infrastructure failures (store
// unavailable, persist failure). Expectation mismatches are reported in
// the Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	opts := []engine.Option{engine.WithLogger(h.logger.Named("engine"))}
	if scenario.MaxFluents > 0 {
		opts = append(opts, engine.WithMaxFluents(scenario.MaxFluents))
	}

	agg := engine.New(opts...)
	session, err := agg.Attach(ctx, st, testutil.NewFixedSessionGenerator(scenario.Session))
	if err != nil {
		return nil, fmt.Errorf("failed to attach session: %w", err)
	}

	result := NewResult()

	for i, text := range scenario.Statements {
		if err := agg.AddStatement(ctx, text); err != nil {
			if engine.IsPersistError(err) {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			result.Rejected = append(result.Rejected, Rejection{Statement: text, Error: err.Error()})
		}
	}

	model, err := agg.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot model: %w", err)
	}
	result.Model = model

	history := agg.History()
	entries := history.Entries()
	stmts := make([]compiler.Statement, len(entries))
	for i, e := range entries {
		stmts[i] = e.Statement
	}
	result.Diagnostics = compiler.Validate(stmts)

	for _, q := range scenario.Queries {
		holds, err := agg.Query(q.Query)
		ans := Answer{Query: q.Query, Holds: holds}
		if err != nil {
			ans.Error = err.Error()
		}
		result.Answers = append(result.Answers, ans)
	}

	h.checkReplay(ctx, st, session, opts, result)

	for _, msg := range EvaluateAssertions(result, scenario) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("statements", len(entries)),
		zap.Int("rejected", len(result.Rejected)),
		zap.String("hash", model.Hash))

	return result, nil
}

// checkReplay rebuilds the session from the store and records a failure
// if the rebuilt model differs from the live one.
func (h *Harness) checkReplay(ctx context.Context, st *store.Store, session string, opts []engine.Option, result *Result) {
	replayed, err := engine.Replay(ctx, st, session, opts...)
	if err != nil {
		result.AddError(fmt.Sprintf("replay failed: %v", err))
		return
	}

	m, err := replayed.Model()
	if err != nil {
		result.AddError(fmt.Sprintf("replay snapshot failed: %v", err))
		return
	}

	if m.Hash != result.Model.Hash {
		result.AddError((&AssertionError{
			Type:     "replay",
			Expected: "model hash " + result.Model.Hash,
			Actual:   "model hash " + m.Hash,
		}).Error())
	}
}
