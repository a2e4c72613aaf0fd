package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storyctx/internal/audit"
	"github.com/roach88/storyctx/internal/store"
)

// ArchiveOptions holds flags for the archive command.
type ArchiveOptions struct {
	*RootOptions
	Database string
	List     bool
}

// ArchiveResult holds the archive output.
type ArchiveResult struct {
	StoryID  string `json:"story_id,omitempty"`
	Entries  int    `json:"entries,omitempty"`
	Database string `json:"database"`
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archive [story-file]",
		Short: "Archive an audit trail to a SQLite database",
		Long: `Archive a story's audit trail to a SQLite database.

Loads the story document, then writes its audit trail into the archive
database. Archiving is idempotent: re-archiving the same story skips
entries already present, keyed by story id and sequence number.

With --list, prints the story ids already present in the archive
instead of writing.

Examples:
  storyctx archive stories/story_2.md --db ./trails.db
  storyctx archive --db ./trails.db --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.List {
				return runArchiveList(opts, cmd)
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "a story file is required unless --list is set")
			}
			return runArchive(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list archived story ids instead of writing")

	return cmd
}

func runArchive(opts *ArchiveOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := context.Background()

	s, err := store.LoadFile(path, warnToStderr(formatter))
	if err != nil {
		return failWith(formatter, err, nil)
	}

	arch, err := audit.OpenArchive(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeArchive, err)
	}
	defer arch.Close()

	entries := s.AuditEntries()
	if err := arch.WriteTrail(ctx, s.StoryID(), entries); err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeArchive, err)
	}

	result := ArchiveResult{
		StoryID:  s.StoryID(),
		Entries:  len(entries),
		Database: opts.Database,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Archived %d audit entries for %s to %s\n",
		result.Entries, result.StoryID, result.Database)
	return nil
}

func runArchiveList(opts *ArchiveOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := context.Background()

	arch, err := audit.OpenArchive(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeArchive, err)
	}
	defer arch.Close()

	ids, err := arch.StoryIDs(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeArchive, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"stories": ids, "database": opts.Database})
	}

	if len(ids) == 0 {
		fmt.Fprintln(formatter.Writer, "(archive is empty)")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(formatter.Writer, id)
	}
	return nil
}
