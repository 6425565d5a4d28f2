// Package engine owns the statement history and the compiled transition
// system built from it.
//
// ARCHITECTURE:
//
// Single writer, many readers:
// Aggregator serializes AddStatement calls with a mutex. Every accepted
// statement triggers a full rebuild from the categorized history, and the
// finished system is published through an atomic pointer. Readers
// (System, Fluents, Statements, Query, Model) load the last published
// snapshot and never block on a rebuild.
//
// Statement Processing Flow:
// 1. compiler.Parse classifies the text; a rejected statement changes nothing
// 2. A candidate history is built with the statement appended to its kind
// 3. compiler.Build runs the universe pre-pass and applies every kind in
// declaration order
// 4. If a store is attached, the statement and model snapshot are written
// 5. The history and snapshot are swapped in
//
// CRITICAL PATTERNS:
//
// Logical Clock
// Accepted statements are stamped with a monotonic seq from Clock.Next().
// The store orders by seq; wall time is only used for log fields.
//
// Deterministic Rebuild
// The system is a pure function of the history: kinds in declaration
// order, statements in entry order within a kind. Rebuilding the same
// history gives the same ir.ModelHash.
package engine
