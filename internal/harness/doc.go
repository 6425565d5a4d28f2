// Package harness runs YAML scenarios against the statement aggregator.
//
// A scenario lists statements, feeds them one at a time to a fresh
// engine.Aggregator attached to an in-memory store, and then checks the
// resulting transition system and query answers. After the run the
// session is replayed from the store and the rebuilt model hash must
// match the live one.
//
// # Scenario Format
//
//	name: toggle
//	description: "a flips p and takes three ticks"
//	statements:
//	  - p initially true
//	  - a causes p if ~p
//	  - a causes ~p if p
//	  - a lasts 3
//	  - ~p after a
//	  - a causes
//	expect_errors:
//	  - a causes
//	expect:
//	  fluents: [p]
//	  states: 2
//	  initial: [s0]
//	  edges:
//	    - "s1 --a--> s0 (3)"
//	    - "s0 --a--> s1 (3)"
//	  observations:
//	    "~p after a": true
//	  diagnostics: []
//	queries:
//	  - query: "necessarily ~p after a"
//	    expect: true
//	  - query: "possibly q"
//	    error: true
//
// Every key under expect is optional; an absent key is not checked.
// expect_errors names statements that must be rejected. Any other
// rejection fails the scenario.
//
// # Golden Files
//
// RunWithGolden compares the DOT rendering of the final model against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
