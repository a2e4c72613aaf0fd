package export

import (
	"github.com/google/uuid"

	"github.com/roach88/storyctx/internal/store"
	"github.com/roach88/storyctx/internal/value"
)

// ContextIDKey is the key carrying the generated handoff correlation id.
const ContextIDKey = "context_id"

// TaskContext merges the store's snapshot with caller-supplied extra fields
// and returns a brand-new mapping. Caller fields win on key collision.
//
// Every returned context carries a generated context id under ContextIDKey
// (unless the caller supplies one) so downstream stages can correlate the
// handoff in their own logs. Mutating the result is never observable through
// the store.
func TaskContext(s *store.Store, extra map[string]value.Value) map[string]value.Value {
	ctx := s.Snapshot()

	for k, v := range extra {
		ctx[k] = value.Clone(v)
	}

	if _, ok := ctx[ContextIDKey]; !ok {
		ctx[ContextIDKey] = value.String(uuid.NewString())
	}

	return ctx
}

// TaskContextFromGo is TaskContext with plain Go extras. Returns an error
// when an extra field is not representable; the store is never touched on
// failure.
func TaskContextFromGo(s *store.Store, extra map[string]any) (map[string]value.Value, error) {
	converted := make(map[string]value.Value, len(extra))
	for k, v := range extra {
		conv, err := value.FromGo(v)
		if err != nil {
			return nil, err
		}
		converted[k] = conv
	}
	return TaskContext(s, converted), nil
}
