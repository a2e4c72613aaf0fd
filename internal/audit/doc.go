// Package audit provides the append-only mutation trail for the context
// store, plus two forensic outputs: a self-describing JSON export document
// and a durable SQLite archive.
//
// The log is diagnostic only. It is never consulted to reconstruct store
// state - rollback in the store works from pre-mutation snapshots, and the
// archive exists purely for post-hoc inspection.
//
// Ordering: every entry carries a seq from the store's logical clock. Entry
// order in the log is a valid serialization of all observed mutations, even
// concurrent ones, because the store appends while holding its lock.
//
// # Archive Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - idempotent inserts: UNIQUE(story_id, seq), duplicates ignored
package audit
