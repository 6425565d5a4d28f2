// Package graph implements the transition system that statements compile
// into: a fixed fluent universe, every one of its 2^n states, a
// deduplicated edge set, and the initial-state candidates.
//
// A System is built once per rebuild and then only read. The engine
// constructs a fresh System for every statement addition and publishes it
// only after it is complete, so readers never observe a half-built one.
//
// States are bitsets over the universe index: bit j of a State is set iff
// fluent j is true. Enumeration order follows a cartesian product over
// (true, false), so state 0 is all-true and state 2^n-1 is all-false.
//
// Constraints registered by invariant and impossibility statements are
// enforced at insertion time: AddEdge refuses an edge whose endpoints
// violate an invariant or whose action is forbidden in its source state,
// and MarkInitial refuses an invalid state.
package graph
