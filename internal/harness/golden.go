package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ezoushen/listproxy/internal/diffkit"
)

// TraceSnapshot is the canonical JSON form of one scenario execution,
// compared against golden files. Field order is fixed by the struct so
// output is byte-stable.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	InferMoves   bool        `json:"infer_moves"`
	ReverseOrder bool        `json:"reverse_order"`
	Ops          diffkit.Ops `json:"ops"`
	OpCount      int         `json:"op_count"`
}

// Trace builds the canonical trace for a result.
func Trace(result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: result.Scenario.Name,
		InferMoves:   result.Scenario.InferMoves,
		ReverseOrder: result.Scenario.ReverseOrder,
		Ops:          result.Instruction.Ops(),
		OpCount:      result.Instruction.OpCount(),
	}
}

// MarshalTrace renders a trace as indented canonical JSON.
func MarshalTrace(trace TraceSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return data, nil
}

// RunWithGolden runs a scenario and compares its trace against
// testdata/golden/{name}.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	data, err := MarshalTrace(Trace(result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
