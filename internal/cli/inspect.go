package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storyctx/internal/store"
	"github.com/roach88/storyctx/internal/value"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Key   string // optional - print a single key
	Audit bool   // include the audit trail
}

// InspectResult holds the inspect output.
type InspectResult struct {
	StoryID string         `json:"story_id"`
	SizeKB  float64        `json:"size_kb"`
	Context map[string]any `json:"context"`
	Trail   []TrailEntry   `json:"trail,omitempty"`
}

// TrailEntry is the JSON shape of one audit entry in CLI output.
type TrailEntry struct {
	Seq       int64    `json:"seq"`
	Timestamp string   `json:"timestamp"`
	Action    string   `json:"action"`
	Keys      []string `json:"keys"`
	ValueType string   `json:"value_type"`
	SizeKB    float64  `json:"size_kb"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <story-file>",
		Short: "Load a story document and print its context",
		Long: `Load a story document into a context store and print the result.

Shows the seeded context mapping exactly as a pipeline stage would see
it. With --key, prints a single value; with --audit, includes the audit
trail.

Examples:
  storyctx inspect stories/story_2.md
  storyctx inspect stories/story_2.md --key goal
  storyctx inspect stories/story_2.md --audit --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "print a single key instead of the whole context")
	cmd.Flags().BoolVar(&opts.Audit, "audit", false, "include the audit trail")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
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

	if opts.Key != "" {
		v := s.Get(opts.Key, nil)
		if v == nil {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("key %q not present", opts.Key), nil)
			return NewExitError(ExitFailure, fmt.Sprintf("key %q not present", opts.Key))
		}
		if opts.Format == "json" {
			return formatter.Success(map[string]any{opts.Key: valueToAny(v)})
		}
		fmt.Fprintln(formatter.Writer, value.GoString(v))
		return nil
	}

	snapshot := s.Snapshot()
	result := InspectResult{
		StoryID: s.StoryID(),
		SizeKB:  float64(s.Size()) / 1024,
		Context: mapToAny(snapshot),
	}
	if opts.Audit {
		result.Trail = trailEntries(s)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	return outputInspectText(formatter, snapshot, result)
}

// outputInspectText prints the context with sorted keys, one per line.
func outputInspectText(formatter *OutputFormatter, snapshot map[string]value.Value, result InspectResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Story: %s\n", result.StoryID)
	fmt.Fprintf(w, "Size:  %.2f KB\n", result.SizeKB)
	fmt.Fprintln(w)

	for _, k := range value.Object(snapshot).SortedKeys() {
		fmt.Fprintf(w, "  %s = %s\n", k, value.GoString(snapshot[k]))
	}

	if result.Trail != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Audit Trail ===")
		for _, e := range result.Trail {
			fmt.Fprintf(w, "  [%d] %s %v (%s, %.2f KB)\n", e.Seq, e.Action, e.Keys, e.ValueType, e.SizeKB)
		}
	}

	return nil
}

// trailEntries converts the store's audit trail to the CLI output shape.
func trailEntries(s *store.Store) []TrailEntry {
	entries := s.AuditEntries()
	out := make([]TrailEntry, len(entries))
	for i, e := range entries {
		out[i] = TrailEntry{
			Seq:       e.Seq,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Action:    string(e.Action),
			Keys:      e.Keys,
			ValueType: e.ValueType,
			SizeKB:    e.SizeKB,
		}
	}
	return out
}

// warnToStderr routes store size warnings to the formatter's diagnostic
// writer so they never corrupt JSON output.
func warnToStderr(formatter *OutputFormatter) store.Option {
	return store.WithWarningFunc(func(sizeBytes int64) {
		w := formatter.ErrWriter
		if w == nil {
			w = formatter.Writer
		}
		fmt.Fprintf(w, "warning: context size %.2f KB exceeds the %.2f KB soft limit\n",
			float64(sizeBytes)/1024, float64(store.WarnSize)/1024)
	})
}

// mapToAny converts a context mapping to plain Go values for JSON output.
func mapToAny(m map[string]value.Value) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = valueToAny(v)
	}
	return out
}

// valueToAny converts a value.Value to a plain Go value.
func valueToAny(v value.Value) any {
	switch val := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(val)
	case value.Int:
		return int64(val)
	case value.Float:
		return float64(val)
	case value.String:
		return string(val)
	case value.Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = valueToAny(elem)
		}
		return out
	case value.Object:
		return mapToAny(val)
	default:
		return nil
	}
}
