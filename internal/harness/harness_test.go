package harness

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyctx/internal/value"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/status_handoff.yaml")
	require.NoError(t, err)

	assert.Equal(t, "status_handoff", s.Name)
	assert.Equal(t, "../documents/story_2.md", s.Document)
	require.Len(t, s.Steps, 2)
	require.NotNil(t, s.Steps[0].Set)
	assert.Equal(t, "status", s.Steps[0].Set.Key)
	assert.Equal(t, "complete", s.Steps[0].Set.Value)
	require.NotNil(t, s.Steps[1].Update)
	assert.Equal(t, 14, s.Steps[1].Update["sprint"])
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_RequiresName(t *testing.T) {
	path := writeScenario(t, `
document: doc.md
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_RequiresDocument(t *testing.T) {
	path := writeScenario(t, `
name: nameless_doc
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is required")
}

func TestLoadScenario_StepMustBeSetOrUpdate(t *testing.T) {
	path := writeScenario(t, `
name: bad_step
document: doc.md
steps:
  - set: { key: a, value: 1 }
    update: { b: 2 }
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of set or update")

	path = writeScenario(t, `
name: empty_step
document: doc.md
steps:
  - {}
`)
	_, err = LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of set or update")
}

func TestLoadScenario_RejectsUnknownAssertionType(t *testing.T) {
	path := writeScenario(t, `
name: bad_assertion
document: doc.md
assertions:
  - type: snapshot_excludes
    key: a
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestRun_StatusHandoffPasses(t *testing.T) {
	scenarioPath := "testdata/scenarios/status_handoff.yaml"
	s, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	result, err := Run(s, filepath.Dir(scenarioPath))
	require.NoError(t, err)

	assert.True(t, result.Pass, "failures: %v", result.Failures)
	assert.True(t, value.Equal(result.Snapshot["status"], value.String("complete")))
	assert.True(t, value.Equal(result.Snapshot["owner"], value.String("platform")))
	require.Len(t, result.Entries, 3)
	assert.Equal(t, int64(1), result.Entries[0].Seq)
	assert.Equal(t, int64(3), result.Entries[2].Seq)
}

func TestRun_ReportsAssertionFailures(t *testing.T) {
	s := &Scenario{
		Name:     "mismatch",
		Document: "../documents/story_2.md",
		Steps: []Step{
			{Set: &SetStep{Key: "status", Value: "in_progress"}},
		},
		Assertions: []Assertion{
			{Type: AssertSnapshotContains, Key: "status", Value: "complete"},
			{Type: AssertSnapshotContains, Key: "missing_key", Value: 1},
			{Type: AssertLogCount, Count: 9},
			{Type: AssertLastEntry, Action: "bulk_updated"},
		},
	}

	result, err := Run(s, "testdata/scenarios")
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Failures, 4)
	assert.Contains(t, result.Failures[0], `key "status"`)
	assert.Contains(t, result.Failures[1], "absent from snapshot")
	assert.Contains(t, result.Failures[2], "want 9")
	assert.Contains(t, result.Failures[3], `want "bulk_updated"`)
}

func TestRun_MissingDocumentIsSetupError(t *testing.T) {
	s := &Scenario{Name: "no_doc", Document: "does_not_exist.md"}

	_, err := Run(s, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load document")
}

func TestRun_FailingStepAborts(t *testing.T) {
	s := &Scenario{
		Name:     "bad_value",
		Document: "../documents/story_2.md",
		Steps: []Step{
			{Update: map[string]any{"weight": "heavy", "ratio": math.NaN()}},
		},
	}

	_, err := Run(s, "testdata/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
}

func TestRunWithGolden_StatusHandoff(t *testing.T) {
	scenarioPath := "testdata/scenarios/status_handoff.yaml"
	s, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	result, err := RunWithGolden(t, s, filepath.Dir(scenarioPath))
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}
