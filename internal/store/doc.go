// Package store writes experiment listings to a SQLite snapshot and reads
// them back.
//
// A snapshot is a derived copy: the keepsake repository stays the source
// of truth and is never written. Each export replaces the previous
// snapshot in one transaction.
//
// # Tables
//
//   - experiments: one row per record, seq = enumeration order
//   - params, checkpoints, metrics: the record, flattened
//   - fields: every resolvable field with its canonical filter text
//   - snapshot: key/value metadata (source directory, filter)
//
// Values are stored as canonical JSON. Queries order by seq so results
// follow the order the records were listed in.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
