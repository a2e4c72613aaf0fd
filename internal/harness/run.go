package harness

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/roach88/storyctx/internal/audit"
	"github.com/roach88/storyctx/internal/store"
	"github.com/roach88/storyctx/internal/testutil"
	"github.com/roach88/storyctx/internal/value"
)

// Result captures a scenario execution: the final state, the audit trail,
// and any assertion failures.
type Result struct {
	Pass     bool
	Failures []string

	Snapshot map[string]value.Value
	Entries  []audit.Entry
}

// scenarioEpoch anchors the frozen clock so wall-clock fields are stable
// across runs.
var scenarioEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes a scenario. The document path resolves relative to baseDir
// (normally the scenario file's directory).
//
// Returns an error for setup problems (missing document, failed step); a
// false Pass with Failures for assertion mismatches.
func Run(scenario *Scenario, baseDir string) (*Result, error) {
	now := testutil.NewFrozenTime(scenarioEpoch, time.Second)

	docPath := scenario.Document
	if !filepath.IsAbs(docPath) {
		docPath = filepath.Join(baseDir, docPath)
	}

	s, err := store.LoadFile(docPath, store.WithNow(now.Now))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: load document: %w", scenario.Name, err)
	}

	for i, step := range scenario.Steps {
		switch {
		case step.Set != nil:
			if err := s.Set(step.Set.Key, step.Set.Value); err != nil {
				return nil, fmt.Errorf("scenario %s: step %d set %q: %w", scenario.Name, i, step.Set.Key, err)
			}
		case step.Update != nil:
			if err := s.Update(step.Update); err != nil {
				return nil, fmt.Errorf("scenario %s: step %d update: %w", scenario.Name, i, err)
			}
		}
	}

	result := &Result{
		Snapshot: s.Snapshot(),
		Entries:  s.AuditEntries(),
	}

	for i, a := range scenario.Assertions {
		if failure := evalAssertion(a, result); failure != "" {
			result.Failures = append(result.Failures, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, failure))
		}
	}
	result.Pass = len(result.Failures) == 0

	return result, nil
}

// evalAssertion checks one assertion against the result. Returns an empty
// string on success, a failure description otherwise.
func evalAssertion(a Assertion, result *Result) string {
	switch a.Type {
	case AssertSnapshotContains:
		got, ok := result.Snapshot[a.Key]
		if !ok {
			return fmt.Sprintf("key %q absent from snapshot", a.Key)
		}
		want, err := value.FromGo(a.Value)
		if err != nil {
			return fmt.Sprintf("expected value for %q is not representable: %v", a.Key, err)
		}
		if !value.Equal(got, want) {
			return fmt.Sprintf("key %q = %s, want %s", a.Key, value.GoString(got), value.GoString(want))
		}
		return ""

	case AssertLogCount:
		if got := len(result.Entries); got != a.Count {
			return fmt.Sprintf("audit trail has %d entries, want %d", got, a.Count)
		}
		return ""

	case AssertLastEntry:
		if len(result.Entries) == 0 {
			return "audit trail is empty"
		}
		last := result.Entries[len(result.Entries)-1]
		if string(last.Action) != a.Action {
			return fmt.Sprintf("last entry action = %q, want %q", last.Action, a.Action)
		}
		if a.Keys != nil && !slices.Equal(last.Keys, a.Keys) {
			return fmt.Sprintf("last entry keys = %v, want %v", last.Keys, a.Keys)
		}
		return ""

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
}
