package compiler

import (
	"cmp"
	"slices"

	"github.com/roach88/actiongraph/internal/graph"
)

// Order returns stmts stably sorted into processing order: by kind in
// declaration order, then by entry order within a kind.
func Order(stmts []Statement) []Statement {
	out := slices.Clone(stmts)
	slices.SortStableFunc(out, func(a, b Statement) int {
		return cmp.Compare(a.Kind(), b.Kind())
	})
	return out
}

// Universe collects the fluents of stmts in processing order, each once,
// in first-mention order.
func Universe(stmts []Statement) []string {
	var fluents []string
	seen := make(map[string]bool)
	for _, st := range Order(stmts) {
		for _, name := range Fluents(st) {
			if !seen[name] {
				seen[name] = true
				fluents = append(fluents, name)
			}
		}
	}
	return fluents
}

// Build constructs a fresh system from stmts: the universe pre-pass, full
// state enumeration, then every statement applied in processing order.
// The result depends only on the order of statements within each kind.
func Build(stmts []Statement, maxFluents int) (*graph.System, error) {
	sys, err := graph.New(Universe(stmts), maxFluents)
	if err != nil {
		return nil, err
	}
	for _, st := range Order(stmts) {
		if err := Apply(st, sys); err != nil {
			return nil, err
		}
	}
	return sys, nil
}
