// Package query parses and evaluates boolean queries against a finished
// transition system. Evaluation never mutates the system.
//
// Grammar:
//
//	query    := mode? body
//	mode     := "necessarily" | "possibly"
//	body     := formula "after" actions ("within" N)?
//	          | "initially" formula
//	          | actions "executable"
//	          | temporal formula
//	temporal := "EX" | "AX" | "EF" | "AF" | "EG" | "AG"
//	          | "reachable" | "invariant"
//	actions  := name ("," name)*
//
// Every query is asked of the initial-state candidates. "necessarily"
// (the default) requires the body to hold from every candidate and is
// vacuously true when there are none; "possibly" requires at least one.
//
// Temporal operators are CTL over the edge relation restricted to valid
// states, evaluated by fixpoint iteration. Paths are maximal: a dead-end
// state ends its path, so it satisfies AX vacuously, fails EX, and
// satisfies EG F when it satisfies F. "reachable" is EF and "invariant"
// is AG.
//
// Query and its cases form a sealed interface, so type switches over a
// parsed query are exhaustive.
package query
