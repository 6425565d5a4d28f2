// Package compiler turns statement text into typed statements and applies
// them to a transition system.
//
// Statement is a closed tagged variant: one case per keyword (Always,
// Impossible, Initially, Causes, Releases, After, Lasts), each holding its
// parsed fields. Parse classifies text by the first keyword, in
// declaration order, that appears as a whole word, then parses that
// kind's shape. Apply dispatches on the case with an exhaustive type
// switch.
//
// Declaration order is also processing order:
//
//	always, impossible, initially, causes, releases, after, lasts
//
// Constraints come first so that every edge is checked against them when
// it is inserted; durations come last because they annotate edges that
// must already exist.
//
// Statement shapes:
//
//	always F
//	impossible A [if C]
//	initially F | F initially [true|false]
//	A causes E [if C]
//	A releases E [if C]
//	F after A1, ..., An
//	A lasts N
package compiler
