// Package ir provides the foundational types shared by every actiongraph
// package: the error kinds, the JSON-serializable model snapshot, and the
// canonical encoding used for content hashes.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Model snapshots are plain data (no pointers back into a live system)
//   - All JSON tags use snake_case
//   - Content hashes use canonical JSON (sorted keys, NFC strings) with
//     domain separation, so two rebuilds of the same history hash equal
package ir
