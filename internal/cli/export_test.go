package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyctx/internal/audit"
)

func TestExportWritesContextFile(t *testing.T) {
	path := writeStory(t, sampleStory)
	outPath := filepath.Join(t.TempDir(), "ctx.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--out", outPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Exported context for Story 2")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var ctx map[string]any
	require.NoError(t, json.Unmarshal(data, &ctx))
	assert.Equal(t, "Story 2", ctx["story_id"])
	assert.Equal(t, "reduce duplication", ctx["goal"])
	assert.NotEmpty(t, ctx["context_id"], "exported context must carry its own id")
}

func TestExportSetAppliesTypedValues(t *testing.T) {
	path := writeStory(t, sampleStory)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--set", "status=complete", "--set", "sprint=14"})

	err := cmd.Execute()
	require.NoError(t, err)

	var ctx map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ctx))
	assert.Equal(t, "complete", ctx["status"])
	assert.Equal(t, float64(14), ctx["sprint"], "numeric values keep their type")
}

func TestExportExtraMergedWithCallerPrecedence(t *testing.T) {
	path := writeStory(t, sampleStory)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--extra", "stage=chart-generation", "--extra", "goal=overridden"})

	err := cmd.Execute()
	require.NoError(t, err)

	var ctx map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ctx))
	assert.Equal(t, "chart-generation", ctx["stage"])
	assert.Equal(t, "overridden", ctx["goal"], "extras win on key collision")
}

func TestExportAuditTrailAlongside(t *testing.T) {
	path := writeStory(t, sampleStory)
	auditPath := filepath.Join(t.TempDir(), "trail.json")
	outPath := filepath.Join(t.TempDir(), "ctx.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--set", "status=complete", "--out", outPath, "--audit", auditPath})

	err := cmd.Execute()
	require.NoError(t, err)

	doc, err := audit.ReadExport(auditPath)
	require.NoError(t, err)
	assert.Equal(t, "Story 2", doc.StoryID)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, audit.ActionLoaded, doc.Entries[0].Action)
	assert.Equal(t, audit.ActionUpdated, doc.Entries[1].Action)
}

func TestExportStdoutIsRawContextDocument(t *testing.T) {
	path := writeStory(t, sampleStory)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	// The context is the payload: no CLIResponse envelope, even in JSON
	// mode, so the output pipes straight into the next stage.
	var ctx map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ctx))
	assert.Equal(t, "Story 2", ctx["story_id"])
	assert.NotContains(t, ctx, "status")
	assert.NotContains(t, ctx, "data")
}

func TestExportRejectsMalformedPair(t *testing.T) {
	path := writeStory(t, sampleStory)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewExportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--set", "no-equals-sign"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "expected key=value")
}

func TestParsePair(t *testing.T) {
	key, val, err := parsePair("sprint=14")
	require.NoError(t, err)
	assert.Equal(t, "sprint", key)
	assert.Equal(t, 14, val)

	key, val, err = parsePair("done=true")
	require.NoError(t, err)
	assert.Equal(t, "done", key)
	assert.Equal(t, true, val)

	key, val, err = parsePair("owner=platform")
	require.NoError(t, err)
	assert.Equal(t, "owner", key)
	assert.Equal(t, "platform", val)

	// Values may contain '=' themselves.
	key, val, err = parsePair("query=a=b")
	require.NoError(t, err)
	assert.Equal(t, "query", key)
	assert.Equal(t, "a=b", val)

	_, _, err = parsePair("=orphan")
	require.Error(t, err)
}
