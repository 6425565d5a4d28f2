// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

// DefaultSessionID is used when a scenario names no session.
const DefaultSessionID = "test-session-default"

// FixedSessionGenerator returns the same session ID every time.
//
// A scenario run against a fresh in-memory store opens exactly one
// session, so a constant ID keeps its log and model hashes reproducible.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id. An empty id
// selects DefaultSessionID.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements engine.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
