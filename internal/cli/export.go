package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storyctx/internal/export"
	"github.com/roach88/storyctx/internal/store"
	"github.com/roach88/storyctx/internal/value"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out    string   // task context output path ("" prints to stdout)
	Audit  string   // optional audit trail export path
	Sets   []string // key=value mutations applied before export
	Extras []string // key=value pairs merged into the context only
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <story-file>",
		Short: "Export a standalone task context",
		Long: `Load a story document and export a standalone task context.

The exported document merges the full context snapshot with any --extra
pairs (extras win on key collision) and carries its own context id, so a
downstream consumer needs no reference back to the store. With --audit,
the audit trail is exported alongside it as a self-describing file.

Values for --set and --extra parse as YAML scalars, so numbers and
booleans keep their types: --set sprint=14 stores an integer.

Without --out, the context document itself goes to stdout - in every
output format, since the context is the payload. No response envelope
is added, so the output pipes straight into the next stage.

Examples:
  storyctx export stories/story_2.md --out ctx.json
  storyctx export stories/story_2.md --set status=complete --audit trail.json
  storyctx export stories/story_2.md --extra stage=chart-generation`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "task context output path (default stdout)")
	cmd.Flags().StringVar(&opts.Audit, "audit", "", "also export the audit trail to this path")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "key=value pair written to the store before export (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Extras, "extra", nil, "key=value pair merged into the context only (repeatable)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.LoadFile(path, warnToStderr(formatter))
	if err != nil {
		return failWith(formatter, err, nil)
	}

	for _, pair := range opts.Sets {
		key, val, err := parsePair(pair)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
		}
		formatter.VerboseLog("Setting %s", key)
		if err := s.Set(key, val); err != nil {
			return failWith(formatter, err, nil)
		}
	}

	extras := make(map[string]any, len(opts.Extras))
	for _, pair := range opts.Extras {
		key, val, err := parsePair(pair)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
		}
		extras[key] = val
	}

	ctx, err := export.TaskContextFromGo(s, extras)
	if err != nil {
		return failWith(formatter, err, nil)
	}

	data, err := value.MarshalMap(ctx)
	if err != nil {
		return failWith(formatter, err, nil)
	}
	data = append(data, '\n')

	if opts.Audit != "" {
		if err := s.ExportAudit(opts.Audit); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
		formatter.VerboseLog("Wrote audit trail to %s", opts.Audit)
	}

	if opts.Out == "" {
		_, err := formatter.Writer.Write(data)
		return err
	}

	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"story_id": s.StoryID(),
			"out":      opts.Out,
			"audit":    opts.Audit,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported context for %s to %s\n", s.StoryID(), opts.Out)
	return nil
}

// parsePair splits a key=value flag and decodes the value as a YAML scalar
// so numbers and booleans keep their types.
func parsePair(pair string) (string, any, error) {
	key, raw, found := strings.Cut(pair, "=")
	if !found || key == "" {
		return "", nil, fmt.Errorf("invalid pair %q: expected key=value", pair)
	}

	var val any
	if err := yaml.Unmarshal([]byte(raw), &val); err != nil {
		// Undecodable scalars fall back to the raw string.
		val = raw
	}
	if val == nil && raw != "" && raw != "null" && raw != "~" {
		val = raw
	}
	return key, val, nil
}
