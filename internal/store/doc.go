// Package store provides SQLite-backed durable storage for statement logs.
//
// The store is an append-only log with:
//   - Sessions: one compiled description each, identified by UUIDv7
//   - Statements: accepted statement text in entry order
//   - Models: snapshots of the compiled system with their content hash
//
// # Patterns
//
// Idempotent writes
//   - UNIQUE(session_id, seq) on statements, PRIMARY KEY(session_id, seq)
//     on models; writes use ON CONFLICT DO NOTHING
//   - Statement IDs are content-addressed from (text, seq)
//
// Logical time
//   - All ordering uses seq INTEGER from the aggregator's logical clock,
//     never timestamps
//   - Every read orders by seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshots are stored as canonical JSON (internal/ir/canonical.go), so a
// stored snapshot is byte-identical for identical models.
package store
