package harness

import (
	"fmt"
	"reflect"
)

// Verify checks a result against its scenario's expectation clause.
// A nil clause always passes; within a clause, nil fields are not
// checked.
func Verify(result *Result) error {
	expect := result.Scenario.Expect
	if expect == nil {
		return nil
	}

	name := result.Scenario.Name
	in := result.Instruction

	if expect.Empty && in.OpCount() > 0 {
		return fmt.Errorf("scenario %q: expected an empty instruction, got %d operations", name, in.OpCount())
	}

	if expect.DeleteSections != nil && !reflect.DeepEqual(expect.DeleteSections, nilToEmpty(in.DeleteSections)) {
		return mismatch(name, "delete_sections", expect.DeleteSections, in.DeleteSections)
	}
	if expect.InsertSections != nil && !reflect.DeepEqual(expect.InsertSections, nilToEmpty(in.InsertSections)) {
		return mismatch(name, "insert_sections", expect.InsertSections, in.InsertSections)
	}
	if expect.MoveSections != nil && !reflect.DeepEqual(expect.moveSections(), nilToEmpty(in.MoveSections)) {
		return mismatch(name, "move_sections", expect.MoveSections, in.MoveSections)
	}
	if expect.DeleteRows != nil && !reflect.DeepEqual(expect.deleteRows(), nilToEmpty(in.DeleteRows)) {
		return mismatch(name, "delete_rows", expect.DeleteRows, in.DeleteRows)
	}
	if expect.InsertRows != nil && !reflect.DeepEqual(expect.insertRows(), nilToEmpty(in.InsertRows)) {
		return mismatch(name, "insert_rows", expect.InsertRows, in.InsertRows)
	}
	if expect.MoveRows != nil && !reflect.DeepEqual(expect.moveRows(), nilToEmpty(in.MoveRows)) {
		return mismatch(name, "move_rows", expect.MoveRows, in.MoveRows)
	}
	if expect.OpCount != nil && *expect.OpCount != in.OpCount() {
		return fmt.Errorf("scenario %q: op_count mismatch: expected %d, got %d", name, *expect.OpCount, in.OpCount())
	}
	return nil
}

// nilToEmpty normalizes a nil slice to an empty one so an explicit
// empty expectation matches an instruction that has no such operations.
func nilToEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func mismatch(name, field string, expected, actual any) error {
	return fmt.Errorf("scenario %q: %s mismatch: expected %v, got %v", name, field, expected, actual)
}
