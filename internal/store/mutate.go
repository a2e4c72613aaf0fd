package store

import (
	"sort"

	"github.com/roach88/storyctx/internal/audit"
	"github.com/roach88/storyctx/internal/value"
)

// Get returns an independent copy of the value for key, or def when absent.
// Pure read: never mutates the store, bounded by one lock acquisition.
func (s *Store) Get(key string, def value.Value) value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return def
	}
	return value.Clone(v)
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Size returns the serialized size in bytes after the last committed
// mutation.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSize
}

// Set writes one key.
//
// Fails with UPDATE_REJECTED when v is not representable, and with
// SIZE_EXCEEDED when the post-mutation serialization would exceed MaxSize -
// in both cases the store is left byte-for-byte unchanged (the prior value
// is restored, or the key removed if it did not exist before). On success,
// exactly one "updated" audit entry is appended.
func (s *Store) Set(key string, v any) error {
	conv, err := value.FromGo(v)
	if err != nil {
		return newUpdateRejected(key, err)
	}

	warnSize, err := s.commitSet(key, conv)
	if err != nil {
		return err
	}
	if warnSize > 0 && s.warnFn != nil {
		// Outside the lock: the hook may log or do I/O.
		s.warnFn(warnSize)
	}
	return nil
}

// commitSet performs the locked portion of Set. Returns a nonzero size when
// the mutation crossed the warning threshold.
func (s *Store) commitSet(key string, conv value.Value) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot the prior state of the affected key for rollback.
	prev, existed := s.data[key]

	// Store a private copy: a caller holding the composite must not be
	// able to mutate committed state past the lock and the size check.
	s.data[key] = value.Clone(conv)
	size, err := serializedSize(s.data)
	if err != nil {
		// Cannot happen for FromGo-validated values; restore and
		// surface as a rejection if it ever does.
		s.rollbackKey(key, prev, existed)
		return 0, newUpdateRejected(key, err)
	}

	if size > MaxSize {
		s.rollbackKey(key, prev, existed)
		return 0, newSizeExceeded(OpMutation, key, size, MaxSize)
	}

	crossed := s.lastSize <= WarnSize && size > WarnSize
	s.lastSize = size

	s.log.Append(audit.Entry{
		Seq:       s.clock.Next(),
		Timestamp: s.now(),
		Action:    audit.ActionUpdated,
		Keys:      []string{key},
		ValueType: conv.TypeName(),
		SizeKB:    sizeKB(size),
	})

	if crossed {
		return size, nil
	}
	return 0, nil
}

// Update applies a whole mapping atomically: either every key commits and
// exactly one "bulk_updated" audit entry is appended, or no key is applied
// and the store is exactly as before the call.
func (s *Store) Update(mapping map[string]any) error {
	if len(mapping) == 0 {
		return nil
	}

	// Validate every value before touching the store, so a single
	// unrepresentable entry rejects the whole call.
	converted := make(map[string]value.Value, len(mapping))
	for k, v := range mapping {
		conv, err := value.FromGo(v)
		if err != nil {
			return newUpdateRejected(k, err)
		}
		converted[k] = conv
	}

	warnSize, err := s.commitUpdate(converted)
	if err != nil {
		return err
	}
	if warnSize > 0 && s.warnFn != nil {
		s.warnFn(warnSize)
	}
	return nil
}

// commitUpdate performs the locked portion of Update.
func (s *Store) commitUpdate(converted map[string]value.Value) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot the prior state of every affected key.
	type prior struct {
		val     value.Value
		existed bool
	}
	priors := make(map[string]prior, len(converted))
	for k := range converted {
		v, ok := s.data[k]
		priors[k] = prior{val: v, existed: ok}
	}

	// Private copies, same as commitSet.
	for k, v := range converted {
		s.data[k] = value.Clone(v)
	}

	size, err := serializedSize(s.data)
	if err == nil && size > MaxSize {
		err = newSizeExceeded(OpMutation, "", size, MaxSize)
	}
	if err != nil {
		for k, p := range priors {
			s.rollbackKey(k, p.val, p.existed)
		}
		if se, ok := err.(*Error); ok {
			return 0, se
		}
		return 0, newUpdateRejected("", err)
	}

	crossed := s.lastSize <= WarnSize && size > WarnSize
	s.lastSize = size

	keys := make([]string, 0, len(converted))
	for k := range converted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.log.Append(audit.Entry{
		Seq:       s.clock.Next(),
		Timestamp: s.now(),
		Action:    audit.ActionBulkUpdated,
		Keys:      keys,
		ValueType: "mapping",
		SizeKB:    sizeKB(size),
	})

	if crossed {
		return size, nil
	}
	return 0, nil
}

// rollbackKey restores a key to its pre-mutation state: the prior value, or
// absence if the key did not exist before. Callers hold the lock.
func (s *Store) rollbackKey(key string, prev value.Value, existed bool) {
	if existed {
		s.data[key] = prev
	} else {
		delete(s.data, key)
	}
}

// Snapshot returns an independent deep copy of all keys and values.
// Mutating the copy is never observable through the store.
func (s *Store) Snapshot() map[string]value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return value.CloneMap(s.data)
}

// AuditEntries returns an ordered copy of the audit trail.
func (s *Store) AuditEntries() []audit.Entry {
	return s.log.Entries()
}

// ExportAudit writes the audit trail as a self-describing document at path.
// State is copied first; the file write happens with no lock held.
func (s *Store) ExportAudit(path string) error {
	s.mu.Lock()
	doc := audit.ExportDocument{
		StoryID:    s.storyID,
		SourcePath: s.sourcePath,
		ExportedAt: s.now(),
		Entries:    s.log.Entries(),
	}
	s.mu.Unlock()

	return audit.WriteExport(path, doc)
}
