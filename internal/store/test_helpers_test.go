package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/actiongraph/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// openTestSession records a session created at seq 0.
func openTestSession(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.OpenSession(context.Background(), id, 0); err != nil {
		t.Fatalf("OpenSession(%q) failed: %v", id, err)
	}
}

// createTestModel returns a small two-state model with its hash set.
func createTestModel() ir.Model {
	m := ir.Model{
		Fluents: []string{"p"},
		States: []ir.StateRecord{
			{ID: "s0", Label: "p", Values: map[string]bool{"p": true}, Valid: true},
			{ID: "s1", Label: "~p", Values: map[string]bool{"p": false}, Valid: true},
		},
		Edges: []ir.EdgeRecord{
			{Source: "s1", Action: "a", Target: "s0", Duration: 3, Label: "a (3)"},
			{Source: "s0", Action: "a", Target: "s1", Duration: 3, Label: "a (3)"},
		},
		Initial:    []string{"s0"},
		Statements: []string{"p initially true", "a causes p if ~p", "a causes ~p if p", "a lasts 3"},
	}
	m.Hash = ir.MustModelHash(m)
	return m
}
