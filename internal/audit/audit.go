package audit

import (
	"sync"
	"time"
)

// Action identifies the kind of mutation an entry records.
type Action string

const (
	// ActionLoaded records the initial population of a store from a
	// parsed story document.
	ActionLoaded Action = "loaded"

	// ActionUpdated records a single-key set.
	ActionUpdated Action = "updated"

	// ActionBulkUpdated records an atomic multi-key update. The whole
	// mapping counts as one entry, not one per key.
	ActionBulkUpdated Action = "bulk_updated"
)

// Entry is one recorded mutation event.
type Entry struct {
	// Seq is the logical commit order from the store's clock. Strictly
	// increasing; ordering uses seq, never timestamps.
	Seq int64 `json:"seq"`

	// Timestamp is the wall-clock commit time, carried for the export
	// document and human inspection only.
	Timestamp time.Time `json:"timestamp"`

	Action Action `json:"action"`

	// Keys lists the keys the mutation touched, in caller order for a
	// single set and sorted for bulk updates.
	Keys []string `json:"keys"`

	// ValueType is the variant name of the written value, or "mapping"
	// for bulk updates.
	ValueType string `json:"value_type"`

	// SizeKB is the serialized size of the whole store after the
	// mutation committed, in kilobytes.
	SizeKB float64 `json:"size_kb"`
}

// Log is an append-only, ordered record of mutations.
// Entries are never removed or rewritten.
//
// Thread-safety: Log guards itself. The store appends while holding its own
// lock, which is what guarantees seq order matches append order; the Log's
// mutex only protects readers that inspect the trail concurrently.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry to the end of the log.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns an ordered copy of the log. Mutating the returned slice is
// never observable through the log.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e
		out[i].Keys = append([]string(nil), e.Keys...)
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
