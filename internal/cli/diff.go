package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/harness"
)

// DiffReport is the serializable result of a fixture diff.
type DiffReport struct {
	Old          string      `json:"old"`
	New          string      `json:"new"`
	InferMoves   bool        `json:"infer_moves"`
	ReverseOrder bool        `json:"reverse_order"`
	Ops          diffkit.Ops `json:"ops"`
	OpCount      int         `json:"op_count"`
}

// String renders the report for text output.
func (r DiffReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s (moves=%t reverse=%t)\n", r.Old, r.New, r.InferMoves, r.ReverseOrder)
	b.WriteString(renderOps(r.Ops))
	fmt.Fprintf(&b, "%d operation(s)", r.OpCount)
	return b.String()
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	var inferMoves, reverseOrder bool

	cmd := &cobra.Command{
		Use:   "diff <old.cue> <new.cue>",
		Short: "Diff two snapshot fixtures and print the instruction",
		Long: `Diff two snapshot fixtures and print the synthesized instruction.

The instruction lists delete/insert/move operations in sink application
order; deletes and move origins address the old snapshot, inserts and
move destinations address the new one.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], inferMoves, reverseOrder, cmd)
		},
	}

	cmd.Flags().BoolVar(&inferMoves, "moves", false, "pair matching deletes and inserts into moves")
	cmd.Flags().BoolVar(&reverseOrder, "reverse", false, "flip the tie-break toward the end of the list")

	return cmd
}

func runDiff(opts *RootOptions, oldPath, newPath string, inferMoves, reverseOrder bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	oldFixtures, err := LoadFixture(oldPath)
	if err != nil {
		formatter.Error(ErrCodeFixtureLoad, err.Error())
		return WrapExitError(ExitCommandError, "load old fixture", err)
	}
	newFixtures, err := LoadFixture(newPath)
	if err != nil {
		formatter.Error(ErrCodeFixtureLoad, err.Error())
		return WrapExitError(ExitCommandError, "load new fixture", err)
	}

	result, err := harness.Run(&harness.Scenario{
		Name:         "diff",
		Description:  "ad-hoc fixture diff",
		InferMoves:   inferMoves,
		ReverseOrder: reverseOrder,
		Old:          oldFixtures,
		New:          newFixtures,
	})
	if err != nil {
		formatter.Error(ErrCodeFixtureInvalid, err.Error())
		return WrapExitError(ExitFailure, "diff failed", err)
	}

	return formatter.Success(DiffReport{
		Old:          oldPath,
		New:          newPath,
		InferMoves:   inferMoves,
		ReverseOrder: reverseOrder,
		Ops:          result.Instruction.Ops(),
		OpCount:      result.Instruction.OpCount(),
	})
}

// renderOps renders operations one per line in application order,
// skipping empty groups.
func renderOps(ops diffkit.Ops) string {
	var b strings.Builder
	for _, p := range ops.DeleteRows {
		fmt.Fprintf(&b, "  delete row    (%d, %d)\n", p.Section, p.Row)
	}
	for _, i := range ops.DeleteSections {
		fmt.Fprintf(&b, "  delete section %d\n", i)
	}
	for _, m := range ops.MoveSections {
		fmt.Fprintf(&b, "  move section   %d -> %d\n", m.From, m.To)
	}
	for _, i := range ops.InsertSections {
		fmt.Fprintf(&b, "  insert section %d\n", i)
	}
	for _, p := range ops.InsertRows {
		fmt.Fprintf(&b, "  insert row    (%d, %d)\n", p.Section, p.Row)
	}
	for _, m := range ops.MoveRows {
		fmt.Fprintf(&b, "  move row      (%d, %d) -> (%d, %d)\n",
			m.From.Section, m.From.Row, m.To.Section, m.To.Row)
	}
	return b.String()
}
