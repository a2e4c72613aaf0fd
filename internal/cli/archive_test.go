package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyctx/internal/audit"
)

func TestArchiveWritesTrail(t *testing.T) {
	path := writeStory(t, sampleStory)
	dbPath := filepath.Join(t.TempDir(), "trails.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewArchiveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Archived 1 audit entries for Story 2")

	arch, err := audit.OpenArchive(dbPath)
	require.NoError(t, err)
	defer arch.Close()

	entries, err := arch.ReadTrail(context.Background(), "Story 2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionLoaded, entries[0].Action)
}

func TestArchiveIsIdempotent(t *testing.T) {
	path := writeStory(t, sampleStory)
	dbPath := filepath.Join(t.TempDir(), "trails.db")

	for i := 0; i < 2; i++ {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "text"}
		cmd := NewArchiveCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path, "--db", dbPath})
		require.NoError(t, cmd.Execute())
	}

	arch, err := audit.OpenArchive(dbPath)
	require.NoError(t, err)
	defer arch.Close()

	entries, err := arch.ReadTrail(context.Background(), "Story 2")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "re-archiving must not duplicate entries")
}

func TestArchiveList(t *testing.T) {
	path := writeStory(t, sampleStory)
	dbPath := filepath.Join(t.TempDir(), "trails.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewArchiveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--db", dbPath})
	require.NoError(t, cmd.Execute())

	buf = &bytes.Buffer{}
	cmd = NewArchiveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--list"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Story 2\n", buf.String())
}

func TestArchiveListEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trails.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewArchiveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--list"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "(archive is empty)")
}

func TestArchiveRequiresStoryFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trails.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewArchiveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "story file is required")
}
