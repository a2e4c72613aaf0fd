// Package store implements the shared coordination store that independent
// pipeline stages read and write without losing updates, exceeding the
// size limit, or leaving a partial view after a failed write.
//
// ARCHITECTURE:
//
// Single-Lock Serialization:
// One store-wide mutex serializes every Get/Set/Update/Snapshot call. Reads
// get no special parallel access - audit ordering consistency matters more
// than read throughput at this scale. All critical sections are pure
// in-memory work (map mutation, size recomputation, audit append); no I/O
// happens while the lock is held. ExportAudit copies state under the lock
// and writes the file after releasing it.
//
// The lock induces one global total order over all mutations, so the audit
// log's entry order is a valid serialization of all observed concurrent
// calls, even for calls touching disjoint keys.
//
// Size Bounding:
// Every mutation tentatively commits, reserializes the entire candidate
// mapping, and rolls back to the exact pre-call state if the result would
// exceed MaxSize. Rollback works from pre-mutation snapshots of the affected
// keys, never from the audit log. The full recompute is O(store size) per
// write - a deliberate simplicity trade-off at the 10 MB scale.
//
// Error Model:
// Construction-time failures (LOAD_NOT_FOUND, PARSE_FAILURE, SIZE_EXCEEDED
// at load) abort - no partially-populated store is ever returned.
// Mutation-time failures (SIZE_EXCEEDED, UPDATE_REJECTED) are recoverable
// and leave the store byte-for-byte unchanged.
package store
