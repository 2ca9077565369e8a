package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezoushen/listproxy/internal/harness"
)

// RunReport is the serializable result of a scenario run.
type RunReport struct {
	Trace harness.TraceSnapshot `json:"trace"`
}

// String renders the report for text output.
func (r RunReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %q passed\n", r.Trace.ScenarioName)
	b.WriteString(renderOps(r.Trace.Ops))
	fmt.Fprintf(&b, "%d operation(s)", r.Trace.OpCount)
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run diff conformance scenarios",
		Long: `Run one or more YAML diff scenarios.

Each scenario is diffed, replayed through the reference applier, and
checked against its expectation clause. The first failure stops the
run.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runScenarios(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	for _, path := range paths {
		result, err := harness.RunFile(path)
		if err != nil {
			formatter.Error(ErrCodeScenarioFailed, err.Error())
			return WrapExitError(ExitFailure, fmt.Sprintf("scenario %s failed", path), err)
		}
		if err := formatter.Success(RunReport{Trace: harness.Trace(result)}); err != nil {
			return err
		}
	}
	return nil
}
