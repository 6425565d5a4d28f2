package engine

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/actiongraph/internal/compiler"
	"github.com/roach88/actiongraph/internal/graph"
	"github.com/roach88/actiongraph/internal/ir"
	"github.com/roach88/actiongraph/internal/query"
	"github.com/roach88/actiongraph/internal/store"
)

// Entry is one accepted statement with its logical timestamp.
type Entry struct {
	Seq       int64
	Statement compiler.Statement
}

// History is the accepted statements partitioned by kind. Within a kind,
// entries are in entry order.
type History [compiler.NumKinds][]Entry

// appended returns a copy of h with e added to its kind.
func (h *History) appended(e Entry) History {
	var out History
	for k := range h {
		out[k] = slices.Clone(h[k])
	}
	k := e.Statement.Kind()
	out[k] = append(out[k], e)
	return out
}

// Statements returns the statements in processing order.
func (h *History) Statements() []compiler.Statement {
	var out []compiler.Statement
	for _, entries := range h {
		for _, e := range entries {
			out = append(out, e.Statement)
		}
	}
	return out
}

// Entries returns every entry in entry (seq) order.
func (h *History) Entries() []Entry {
	var out []Entry
	for _, entries := range h {
		out = append(out, entries...)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of accepted statements.
func (h *History) Len() int {
	n := 0
	for _, entries := range h {
		n += len(entries)
	}
	return n
}

// Build compiles a history into a fresh system.
func Build(h History, maxFluents int) (*graph.System, error) {
	return compiler.Build(h.Statements(), maxFluents)
}

// snapshot is what readers see: a finished system and the history text
// that produced it.
type snapshot struct {
	sys        *graph.System
	statements []string
}

// Aggregator accumulates statements and keeps the compiled system current.
//
// Thread-safety model:
//   - AddStatement / AddStatements / Reset / Attach: serialized by mu
//   - System / Fluents / Statements / Query / Model: lock-free snapshot reads
type Aggregator struct {
	mu      sync.Mutex
	history History
	current atomic.Pointer[snapshot]

	clock      *Clock
	logger     *zap.Logger
	maxFluents int

	store   *store.Store
	session string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the structured logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxFluents bounds the fluent universe. Values <= 0 select
// graph.DefaultMaxFluents.
func WithMaxFluents(n int) Option {
	return func(a *Aggregator) {
		a.maxFluents = n
	}
}

// WithClock sets the logical clock. Used to continue numbering after a
// store's last seq.
func WithClock(c *Clock) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithStore persists every accepted statement and model snapshot to
// session in s. The session must already exist.
func WithStore(s *store.Store, session string) Option {
	return func(a *Aggregator) {
		a.store = s
		a.session = session
	}
}

// New creates an empty aggregator. Its system has no fluents, a single
// state, no edges and no initial-state candidates.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		clock:  NewClock(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	sys, err := graph.New(nil, a.maxFluents)
	if err != nil {
		// An empty universe is always within any limit.
		panic(err)
	}
	a.current.Store(&snapshot{sys: sys})
	return a
}

// AddStatement classifies, records and compiles one statement.
//
// On any error the history and the published system are unchanged:
// malformed text returns an ir.FormatError, a universe over the fluent
// limit returns the graph's FormatError, and a failed store write
// returns a RuntimeError.
func (a *Aggregator) AddStatement(ctx context.Context, text string) error {
	st, err := compiler.Parse(text)
	if err != nil {
		a.logger.Info("statement rejected", zap.String("text", text), zap.Error(err))
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.accept(ctx, Entry{Seq: a.clock.Current() + 1, Statement: st}, a.store != nil)
}

// AddStatements applies each text in turn and stops at the first error.
func (a *Aggregator) AddStatements(ctx context.Context, texts []string) error {
	for _, text := range texts {
		if err := a.AddStatement(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

// accept rebuilds with e appended and publishes the result. Caller holds mu.
func (a *Aggregator) accept(ctx context.Context, e Entry, persist bool) error {
	candidate := a.history.appended(e)

	start := time.Now()
	sys, err := Build(candidate, a.maxFluents)
	if err != nil {
		a.logger.Info("statement rejected",
			zap.Int64("seq", e.Seq),
			zap.String("text", e.Statement.Text()),
			zap.Error(err))
		return err
	}
	next := &snapshot{sys: sys, statements: dedupText(candidate.Entries())}

	if persist {
		if err := a.persist(ctx, e, next); err != nil {
			return err
		}
	}

	a.clock.advanceTo(e.Seq)
	a.history = candidate
	a.current.Store(next)

	a.logger.Info("statement accepted",
		zap.Int64("seq", e.Seq),
		zap.Stringer("kind", e.Statement.Kind()),
		zap.String("text", e.Statement.Text()))
	a.logger.Debug("model rebuilt",
		zap.Int("fluents", len(sys.Fluents())),
		zap.Int("states", sys.NumStates()),
		zap.Int("edges", len(sys.Edges())),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (a *Aggregator) persist(ctx context.Context, e Entry, snap *snapshot) error {
	_, err := a.store.AppendStatement(ctx, store.StatementRecord{
		SessionID: a.session,
		Seq:       e.Seq,
		Kind:      e.Statement.Kind().Keyword(),
		Text:      e.Statement.Text(),
	})
	if err != nil {
		return NewPersistError(a.session, e.Seq, err)
	}

	m, err := snap.sys.Model(snap.statements)
	if err != nil {
		return err
	}
	if err := a.store.WriteModel(ctx, a.session, e.Seq, m); err != nil {
		return NewPersistError(a.session, e.Seq, err)
	}
	return nil
}

// Attach opens a new session in s, writes the current history and model
// to it, and persists every later statement there. Returns the session ID.
func (a *Aggregator) Attach(ctx context.Context, s *store.Store, gen IDGenerator) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	last, err := s.GetLastSeq(ctx)
	if err != nil {
		return "", err
	}
	a.clock.advanceTo(last)

	id := gen.Generate()
	if err := s.OpenSession(ctx, id, a.clock.Next()); err != nil {
		return "", NewPersistError(id, 0, err)
	}

	// Restamp existing entries after the session's creation seq so the
	// log stays ordered within the store.
	var restamped History
	for _, e := range a.history.Entries() {
		e.Seq = a.clock.Next()
		k := e.Statement.Kind()
		restamped[k] = append(restamped[k], e)
	}
	a.history = restamped
	a.store, a.session = s, id

	snap := a.current.Load()
	for _, e := range a.history.Entries() {
		if _, err := s.AppendStatement(ctx, store.StatementRecord{
			SessionID: id,
			Seq:       e.Seq,
			Kind:      e.Statement.Kind().Keyword(),
			Text:      e.Statement.Text(),
		}); err != nil {
			return id, NewPersistError(id, e.Seq, err)
		}
	}
	if a.history.Len() > 0 {
		m, err := snap.sys.Model(snap.statements)
		if err != nil {
			return id, err
		}
		if err := s.WriteModel(ctx, id, a.clock.Current(), m); err != nil {
			return id, NewPersistError(id, a.clock.Current(), err)
		}
	}

	a.logger.Info("session attached", zap.String("session", id), zap.Int("statements", a.history.Len()))
	return id, nil
}

// Session returns the attached session ID, or "" if none.
func (a *Aggregator) Session() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Reset clears the history and publishes an empty system. An attached
// store keeps its log.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	sys, err := graph.New(nil, a.maxFluents)
	if err != nil {
		panic(err)
	}
	a.history = History{}
	a.current.Store(&snapshot{sys: sys})
	a.logger.Info("history reset")
}

// System returns the last published system. Callers must treat it as
// read-only.
func (a *Aggregator) System() *graph.System {
	return a.current.Load().sys
}

// Fluents returns the current fluent universe.
func (a *Aggregator) Fluents() []string {
	return a.System().Fluents()
}

// Statements returns the accepted statement texts, deduplicated, in entry
// order.
func (a *Aggregator) Statements() []string {
	return slices.Clone(a.current.Load().statements)
}

// History returns a copy of the categorized history.
func (a *Aggregator) History() History {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out History
	for k := range a.history {
		out[k] = slices.Clone(a.history[k])
	}
	return out
}

// Query evaluates a query against the current system.
func (a *Aggregator) Query(text string) (bool, error) {
	return query.Eval(text, a.System())
}

// Model returns a read-only snapshot of the current system.
func (a *Aggregator) Model() (ir.Model, error) {
	snap := a.current.Load()
	return snap.sys.Model(snap.statements)
}

func dedupText(entries []Entry) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		text := e.Statement.Text()
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}
