package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoushen/listproxy/internal/harness"
)

// ValidationReport is the serializable result of fixture validation.
type ValidationReport struct {
	Fixture  string `json:"fixture"`
	Valid    bool   `json:"valid"`
	Sections int    `json:"sections"`
	Rows     int    `json:"rows"`
}

// String renders the report for text output.
func (r ValidationReport) String() string {
	return fmt.Sprintf("%s: OK (%d section(s), %d row(s))", r.Fixture, r.Sections, r.Rows)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var inferMoves bool

	cmd := &cobra.Command{
		Use:   "validate <fixture.cue>",
		Short: "Check a snapshot fixture's shape and key uniqueness",
		Long: `Check a snapshot fixture's shape and identity-key uniqueness.

Section keys must be unique, rows unique within each section, and with
--moves rows must be unique across the whole snapshot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], inferMoves, cmd)
		},
	}

	cmd.Flags().BoolVar(&inferMoves, "moves", false, "also require global row uniqueness")

	return cmd
}

func runValidate(opts *RootOptions, path string, inferMoves bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	fixtures, err := LoadFixture(path)
	if err != nil {
		formatter.Error(ErrCodeFixtureLoad, err.Error())
		return WrapExitError(ExitCommandError, "load fixture", err)
	}

	if err := harness.ValidateFixtures(fixtures, inferMoves); err != nil {
		formatter.Error(ErrCodeFixtureInvalid, err.Error())
		return WrapExitError(ExitFailure, "invalid fixture", err)
	}

	rows := 0
	for _, f := range fixtures {
		rows += len(f.Rows)
	}
	return formatter.Success(ValidationReport{
		Fixture:  path,
		Valid:    true,
		Sections: len(fixtures),
		Rows:     rows,
	})
}
