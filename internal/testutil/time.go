package testutil

import (
	"sync"
	"time"
)

// FrozenTime is a deterministic wall-clock source for tests.
//
// Each call to Now advances by a fixed step from a fixed start, so audit
// timestamps and export documents come out identical across runs.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FrozenTime struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewFrozenTime creates a frozen clock starting at start, advancing by step
// on every Now call.
func NewFrozenTime(start time.Time, step time.Duration) *FrozenTime {
	return &FrozenTime{next: start, step: step}
}

// Now returns the current frozen time and advances the clock.
func (f *FrozenTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.next
	f.next = f.next.Add(f.step)
	return t
}

// Reset rewinds the clock to start. Used for test reuse.
func (f *FrozenTime) Reset(start time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = start
}
