// Package harness executes YAML-defined diff scenarios for conformance
// testing.
//
// A scenario names two snapshot fixtures (old and new), the differ
// flags to use, and optionally the exact instruction it expects. The
// runner diffs the fixtures, replays the instruction through the
// reference applier to prove it reconstructs the new snapshot, and
// checks the expectations.
//
// Golden traces capture the full operation payload as canonical JSON
// under testdata/golden, compared with goldie. Regenerate with:
//
//	go test ./internal/harness -update
package harness
