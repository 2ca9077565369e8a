package diffkit

import (
	"fmt"

	"github.com/ezoushen/listproxy/internal/model"
)

// Apply executes an instruction against the old snapshot, in the order a
// behaviorally correct sink must use: delete rows, delete sections, move
// sections, insert sections, insert rows, move rows. Deletes and move
// origins resolve against the pre-mutation index space, inserts and move
// destinations against the post-mutation space.
//
// This is the reference sink behavior: the in-memory equivalent of a
// widget's batch mutation. Test sinks build on it, and the round-trip
// property (Apply(old, Diff(old, next)) is identity-equal to next) is
// the engine's core correctness check.
//
// Panics on an instruction that is inconsistent with old: that indicates
// an identity-invariant breach upstream and continuing would corrupt
// visible state.
func Apply(old model.Snapshot, in *Instruction) model.Snapshot {
	// Working row slices, one per old section.
	workRows := make([][]model.Row, len(old))
	for i, sec := range old {
		workRows[i] = append([]model.Row(nil), sec.Rows...)
	}

	// 1. Delete rows + capture move origins (pre-mutation row indexes).
	movedRowValues := make([]model.Row, len(in.MoveRows))
	rowRemovals := make(map[int][]int, len(old)) // old section -> old row indexes
	for _, p := range in.DeleteRows {
		rowRemovals[p.Section] = append(rowRemovals[p.Section], p.Row)
	}
	for i, mv := range in.MoveRows {
		sec, row := mv.From.Section, mv.From.Row
		if sec < 0 || sec >= len(old) || row < 0 || row >= len(old[sec].Rows) {
			panic(fmt.Sprintf("apply: row move origin %v out of range", mv.From))
		}
		movedRowValues[i] = old[sec].Rows[row]
		rowRemovals[sec] = append(rowRemovals[sec], row)
	}
	for sec, rows := range rowRemovals {
		if sec < 0 || sec >= len(workRows) {
			panic(fmt.Sprintf("apply: row removal section %d out of range", sec))
		}
		workRows[sec] = removeIndexes(workRows[sec], rows)
	}

	// 2. Delete sections + capture section move origins.
	movedSecValues := make([]model.Section, len(in.MoveSections))
	secRemovals := make([]int, 0, len(in.DeleteSections)+len(in.MoveSections))
	secRemovals = append(secRemovals, in.DeleteSections...)
	for i, mv := range in.MoveSections {
		if mv.From < 0 || mv.From >= len(old) {
			panic(fmt.Sprintf("apply: section move origin %d out of range", mv.From))
		}
		movedSecValues[i] = model.Section{Key: old[mv.From].Key, Rows: workRows[mv.From]}
		secRemovals = append(secRemovals, mv.From)
	}

	removed := make(map[int]bool, len(secRemovals))
	for _, idx := range secRemovals {
		if idx < 0 || idx >= len(old) {
			panic(fmt.Sprintf("apply: section removal %d out of range", idx))
		}
		if removed[idx] {
			panic(fmt.Sprintf("apply: section %d removed twice", idx))
		}
		removed[idx] = true
	}

	var remaining []model.Section
	for i, sec := range old {
		if !removed[i] {
			remaining = append(remaining, model.Section{Key: sec.Key, Rows: workRows[i]})
		}
	}

	// 3+4. Move and insert sections into the post-mutation index space.
	fills := make(map[int]model.Section, len(in.InsertSections)+len(in.MoveSections))
	for _, idx := range in.InsertSections {
		if idx < 0 || idx >= len(in.Target) {
			panic(fmt.Sprintf("apply: section insert %d outside target", idx))
		}
		fills[idx] = in.Target[idx]
	}
	for i, mv := range in.MoveSections {
		if _, taken := fills[mv.To]; taken {
			panic(fmt.Sprintf("apply: section slot %d filled twice", mv.To))
		}
		fills[mv.To] = movedSecValues[i]
	}

	finalLen := len(remaining) + len(fills)
	result := make(model.Snapshot, 0, finalLen)
	next := 0
	for pos := 0; pos < finalLen; pos++ {
		if sec, ok := fills[pos]; ok {
			result = append(result, sec)
			continue
		}
		if next >= len(remaining) {
			panic(fmt.Sprintf("apply: no section available for slot %d", pos))
		}
		result = append(result, remaining[next])
		next++
	}
	if next != len(remaining) {
		panic("apply: surviving sections left over after placement")
	}

	// 5+6. Insert and move rows into the post-mutation index space.
	rowFills := make(map[int]map[int]model.Row)
	addFill := func(p RowPath, row model.Row) {
		if rowFills[p.Section] == nil {
			rowFills[p.Section] = make(map[int]model.Row)
		}
		if _, taken := rowFills[p.Section][p.Row]; taken {
			panic(fmt.Sprintf("apply: row slot %v filled twice", p))
		}
		rowFills[p.Section][p.Row] = row
	}
	for _, p := range in.InsertRows {
		if p.Section < 0 || p.Section >= len(in.Target) || p.Row < 0 || p.Row >= len(in.Target[p.Section].Rows) {
			panic(fmt.Sprintf("apply: row insert %v outside target", p))
		}
		addFill(p, in.Target[p.Section].Rows[p.Row])
	}
	for i, mv := range in.MoveRows {
		addFill(mv.To, movedRowValues[i])
	}

	for sec, fill := range rowFills {
		if sec < 0 || sec >= len(result) {
			panic(fmt.Sprintf("apply: row fill section %d out of range", sec))
		}
		current := result[sec].Rows
		total := len(current) + len(fill)
		merged := make([]model.Row, 0, total)
		nextRow := 0
		for pos := 0; pos < total; pos++ {
			if row, ok := fill[pos]; ok {
				merged = append(merged, row)
				continue
			}
			if nextRow >= len(current) {
				panic(fmt.Sprintf("apply: no row available for slot (%d,%d)", sec, pos))
			}
			merged = append(merged, current[nextRow])
			nextRow++
		}
		result[sec] = model.Section{Key: result[sec].Key, Rows: merged}
	}

	return result
}

// removeIndexes drops the given indexes (pre-mutation space) from rows.
func removeIndexes(rows []model.Row, indexes []int) []model.Row {
	drop := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(rows) {
			panic(fmt.Sprintf("apply: row index %d out of range", idx))
		}
		if drop[idx] {
			panic(fmt.Sprintf("apply: row %d removed twice", idx))
		}
		drop[idx] = true
	}

	kept := rows[:0:0]
	for i, r := range rows {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	return kept
}
