package store

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/roach88/storyctx/internal/audit"
	"github.com/roach88/storyctx/internal/story"
	"github.com/roach88/storyctx/internal/value"
)

const (
	// MaxSize is the hard limit on the serialized size of the whole
	// mapping, checked after every mutation and against raw input before
	// parsing.
	MaxSize = 10 << 20 // 10 MB

	// WarnSize is the soft threshold. Crossing it emits a non-fatal
	// warning through the store's warning hook.
	WarnSize = 5 << 20 // 5 MB

	// TemplatePath is the starter document suggested when the source
	// file is missing.
	TemplatePath = "docs/story_template.md"
)

// Store is the thread-safe, size-bounded, audit-logged key/value
// coordination object shared by pipeline stages.
//
// A Store is created once from a validated story document and mutated
// concurrently for the lifetime of the owning process. It is always passed
// explicitly - never a hidden global - so independent stores can coexist in
// one process.
type Store struct {
	mu   sync.Mutex
	data map[string]value.Value

	log   *audit.Log
	clock *Clock

	storyID    string
	sourcePath string

	// lastSize tracks the serialized size after the previous committed
	// mutation, for warning-threshold crossing detection.
	lastSize int64

	now    func() time.Time
	warnFn func(sizeBytes int64)
}

// Option configures a Store at construction.
type Option func(*Store)

// WithWarningFunc installs a hook invoked (outside the lock) when a
// mutation pushes the serialized size across WarnSize.
func WithWarningFunc(fn func(sizeBytes int64)) Option {
	return func(s *Store) { s.warnFn = fn }
}

// WithNow overrides the wall-clock source for audit timestamps.
// Tests and the scenario harness use this for deterministic output.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Load builds a store pre-populated from a parsed story document.
// Returns a SIZE_EXCEEDED error if the seeded mapping already serializes
// over MaxSize. Appends exactly one "loaded" audit entry on success.
func Load(doc *story.Document, opts ...Option) (*Store, error) {
	s := &Store{
		data:       make(map[string]value.Value),
		log:        audit.NewLog(),
		clock:      NewClock(),
		storyID:    doc.StoryID,
		sourcePath: doc.SourcePath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	seedDocument(s.data, doc)

	size, err := serializedSize(s.data)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if size > MaxSize {
		return nil, newSizeExceeded(OpLoad, "", size, MaxSize)
	}
	s.lastSize = size

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.log.Append(audit.Entry{
		Seq:       s.clock.Next(),
		Timestamp: s.now(),
		Action:    audit.ActionLoaded,
		Keys:      keys,
		ValueType: "mapping",
		SizeKB:    sizeKB(size),
	})

	return s, nil
}

// LoadFile reads, validates, parses, and loads a story document from disk.
//
// Failure modes, all construction-time and fatal:
//   - LOAD_NOT_FOUND when the file does not exist (the message names a
//     template to copy)
//   - SIZE_EXCEEDED when the raw input is already over MaxSize, checked
//     before any parsing occurs
//   - PARSE_FAILURE when required sections are missing, wrapping the
//     parser's full missing-section list
func LoadFile(path string, opts ...Option) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{
				Code: CodeLoadNotFound,
				Op:   OpLoad,
				Message: fmt.Sprintf("story document %s does not exist; copy %s there to get started",
					path, TemplatePath),
				Err: err,
			}
		}
		return nil, &Error{
			Code:    CodeLoadNotFound,
			Op:      OpLoad,
			Message: fmt.Sprintf("cannot read story document %s: %v", path, err),
			Err:     err,
		}
	}

	if int64(len(raw)) > MaxSize {
		return nil, newSizeExceeded(OpLoad, "", int64(len(raw)), MaxSize)
	}

	doc, err := story.ParseNamed(string(raw), path)
	if err != nil {
		return nil, &Error{
			Code:    CodeParseFailure,
			Op:      OpLoad,
			Message: err.Error(),
			Err:     err,
		}
	}

	return Load(doc, opts...)
}

// seedDocument maps the document's fields into the initial store contents.
func seedDocument(data map[string]value.Value, doc *story.Document) {
	data["story_id"] = value.String(doc.StoryID)
	data["goal"] = value.String(doc.Goal)

	criteria := make(value.Array, len(doc.Criteria))
	for i, c := range doc.Criteria {
		criteria[i] = value.Object{
			"id":    value.String(c.ID),
			"title": value.String(c.Title),
			"body":  value.String(c.Body),
		}
	}
	data["acceptance_criteria"] = criteria

	if doc.AsA != "" {
		data["as_a"] = value.String(doc.AsA)
	}
	if doc.SoThat != "" {
		data["so_that"] = value.String(doc.SoThat)
	}
	if doc.Points != nil {
		data["points"] = value.Int(*doc.Points)
	}
	if doc.Priority != "" {
		data["priority"] = value.String(doc.Priority)
	}
	if doc.Status != "" {
		data["status"] = value.String(doc.Status)
	}
}

// serializedSize returns the size in bytes of the whole mapping's
// deterministic serialization.
func serializedSize(data map[string]value.Value) (int64, error) {
	b, err := value.MarshalMap(data)
	if err != nil {
		return 0, fmt.Errorf("serialize store: %w", err)
	}
	return int64(len(b)), nil
}

// sizeKB converts bytes to kilobytes rounded to two decimals, the unit the
// audit trail reports.
func sizeKB(bytes int64) float64 {
	kb := float64(bytes) / 1024
	return float64(int64(kb*100+0.5)) / 100
}

// StoryID returns the id of the loaded story.
func (s *Store) StoryID() string {
	return s.storyID
}

// SourcePath returns the path the store was loaded from, empty for
// in-memory documents.
func (s *Store) SourcePath() string {
	return s.sourcePath
}
