package harness

import (
	"fmt"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// Result is the outcome of running one scenario.
type Result struct {
	Scenario    *Scenario
	Before      model.Snapshot
	After       model.Snapshot
	Instruction *diffkit.Instruction
}

// Run diffs the scenario's fixtures, replays the instruction through
// the reference applier to prove it reconstructs the new snapshot, and
// checks the expectation clause.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	before := Snapshot(scenario.Old)
	after := Snapshot(scenario.New)

	var opts []diffkit.Option
	if scenario.InferMoves {
		opts = append(opts, diffkit.WithMoveInference())
	}
	if scenario.ReverseOrder {
		opts = append(opts, diffkit.WithReverseOrder())
	}

	in := diffkit.New(opts...).Diff(before, after)

	// The instruction must round-trip: applying it to the old snapshot
	// has to produce content identical to the new one.
	replayed := diffkit.Apply(before, in)
	if replayed.ContentHash() != after.ContentHash() {
		return nil, fmt.Errorf("scenario %q: replayed snapshot does not match the new fixture", scenario.Name)
	}

	result := &Result{
		Scenario:    scenario,
		Before:      before,
		After:       after,
		Instruction: in,
	}
	if err := Verify(result); err != nil {
		return nil, err
	}
	return result, nil
}

// RunFile loads and runs the scenario at path.
func RunFile(path string) (*Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return Run(scenario)
}
