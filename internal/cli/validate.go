package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storyctx/internal/story"
)

// ValidationResult holds validation results for one story document.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	StoryID  string   `json:"story_id,omitempty"`
	Criteria []string `json:"criteria,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <story-file>",
		Short: "Validate a story document without loading it",
		Long: `Validate a user story document without building a context store.

Checks that every required section is present and reports all missing
sections in one pass, so a malformed document is fixed in one edit
rather than one error at a time.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot read story document %s: %v", path, err), nil)
		return WrapExitError(ExitCommandError, ErrCodeNotFound, err)
	}

	formatter.VerboseLog("Read %d byte(s) from %s", len(raw), path)

	doc, err := story.ParseNamed(string(raw), path)
	if err != nil {
		var parseErr *story.ParseError
		if errors.As(err, &parseErr) {
			return outputMissingSections(formatter, parseErr)
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}

	return outputValidateSuccess(formatter, doc)
}

// outputValidateSuccess outputs a successful validation.
func outputValidateSuccess(formatter *OutputFormatter, doc *story.Document) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			StoryID:  doc.StoryID,
			Criteria: doc.CriterionIDs(),
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (%d acceptance criteria)\n", doc.StoryID, len(doc.Criteria))
	return nil
}

// outputMissingSections reports every missing section in one response.
func outputMissingSections(formatter *OutputFormatter, parseErr *story.ParseError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:   false,
			Missing: parseErr.Missing,
		}
		if err := formatter.Error(ErrCodeParseFailure, parseErr.Error(), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure,
			fmt.Sprintf("validation failed with %d missing section(s)", len(parseErr.Missing)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, section := range parseErr.Missing {
		fmt.Fprintf(formatter.Writer, "  missing section: %s\n", section)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitFailure,
		fmt.Sprintf("validation failed with %d missing section(s)", len(parseErr.Missing)))
}
