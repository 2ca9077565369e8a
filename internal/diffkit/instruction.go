package diffkit

import (
	"sort"

	"github.com/ezoushen/listproxy/internal/model"
)

// RowPath addresses one row as (section index, row index).
type RowPath struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// Move relocates a section between index spaces: From is resolved in
// the pre-mutation array, To in the post-mutation array.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// RowMove relocates a row, possibly across sections.
type RowMove struct {
	From RowPath `json:"from"`
	To   RowPath `json:"to"`
}

// Instruction is the immutable result of diffing two snapshots: the
// minimal set of delete/insert/move operations transforming the old
// snapshot into Target.
//
// Index space convention (required by typical list widgets): deletes and
// move origins are resolved against the PRE-mutation state, inserts and
// move destinations against the POST-mutation state. Sinks must apply
// operations in the order: delete rows, delete sections, move sections,
// insert sections, insert rows, move rows.
type Instruction struct {
	DeleteSections []int
	InsertSections []int
	MoveSections   []Move

	DeleteRows []RowPath
	InsertRows []RowPath
	MoveRows   []RowMove

	// Target is the snapshot this instruction was computed against;
	// applying the instruction materializes it.
	Target model.Snapshot

	targetHash string
}

// Empty reports whether the instruction contains no operations.
// An empty instruction is a successful no-op, not an error.
func (in *Instruction) Empty() bool {
	return len(in.DeleteSections) == 0 &&
		len(in.InsertSections) == 0 &&
		len(in.MoveSections) == 0 &&
		len(in.DeleteRows) == 0 &&
		len(in.InsertRows) == 0 &&
		len(in.MoveRows) == 0
}

// TargetHash returns the content hash of the target snapshot.
// Cached at synthesis time; used for degenerate-case instruction reuse.
func (in *Instruction) TargetHash() string {
	return in.targetHash
}

// OpCount returns the total number of operations.
func (in *Instruction) OpCount() int {
	return len(in.DeleteSections) + len(in.InsertSections) + len(in.MoveSections) +
		len(in.DeleteRows) + len(in.InsertRows) + len(in.MoveRows)
}

// Differ computes instructions. A Differ is immutable after New and safe
// for concurrent use; diffing is pure.
type Differ struct {
	inferMoves   bool
	reverseOrder bool
}

// Option configures a Differ.
type Option func(*Differ)

// WithMoveInference rewrites removal+insertion pairs of the same
// identity into a single move, at both section and row granularity.
//
// Disabled by default: independent delete+insert is cheaper for a sink
// to apply. Row-level inference requires row identity keys to be unique
// across the whole snapshot (validated, panics on violation).
func WithMoveInference() Option {
	return func(d *Differ) {
		d.inferMoves = true
	}
}

// WithReverseOrder flips the tie-break for overlapping delete/insert
// pairs: where the default reports "delete A at its old position, insert
// A at its new position", the reversed encoding reports the displaced
// neighbor as the delete/insert instead.
//
// Both encodings are minimal and describe the same final state; sinks
// may have different visual side effects for each, which is why the
// choice is a documented flag rather than an implementation accident.
func WithReverseOrder() Option {
	return func(d *Differ) {
		d.reverseOrder = true
	}
}

// New creates a Differ with the given options.
func New(opts ...Option) *Differ {
	d := &Differ{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diff computes the instruction transforming old into next.
//
// Pure and deterministic: the result depends only on the two snapshots
// and the Differ's flags. Panics with *DuplicateKeyError on non-unique
// identity keys (precondition violation).
func (d *Differ) Diff(old, next model.Snapshot) *Instruction {
	nextHash := next.ContentHash()

	// Content-identical snapshots short-circuit to an empty instruction.
	if old.ContentHash() == nextHash {
		d.validate(old)
		return &Instruction{Target: next, targetHash: nextHash}
	}

	var in *Instruction
	if d.reverseOrder {
		// The symmetric minimal script: diff the reversed pair and
		// invert. Swaps which side of an overlapping delete/insert pair
		// is reported as the delete.
		in = invertInstruction(d.diffForward(next, old), next)
	} else {
		in = d.diffForward(old, next)
	}

	in.targetHash = nextHash
	sortInstruction(in)
	return in
}

// validate checks the identity-key preconditions for one snapshot.
func (d *Differ) validate(snap model.Snapshot) {
	validateUniqueKeys("section", sectionKeys(snap))

	if d.inferMoves {
		// Move inference may relocate rows across sections, so row keys
		// must be unique across the whole snapshot.
		total := make([]string, 0, snap.RowCount())
		for _, sec := range snap {
			total = append(total, rowKeys(sec.Rows)...)
		}
		validateUniqueKeys("row", total)
		return
	}

	for _, sec := range snap {
		validateUniqueKeys("row", rowKeys(sec.Rows))
	}
}

// diffForward computes the default-orientation instruction.
func (d *Differ) diffForward(old, next model.Snapshot) *Instruction {
	d.validate(old)
	d.validate(next)

	in := &Instruction{Target: next}

	sectionCS := diffKeys(sectionKeys(old), sectionKeys(next))
	if d.inferMoves {
		associateMoves(&sectionCS)
	}

	// Keys removed/inserted without a move association. With inference
	// off a relocated section appears here on both sides; its rows are
	// subsumed by the delete+insert and must not surface as row edits.
	removedPlain := make(map[string]bool)
	insertedPlain := make(map[string]bool)

	for _, r := range sectionCS.Removals {
		if r.AssociatedWith == nil {
			in.DeleteSections = append(in.DeleteSections, r.Index)
			removedPlain[r.Key] = true
		}
	}
	for _, ins := range sectionCS.Insertions {
		if ins.AssociatedWith == nil {
			in.InsertSections = append(in.InsertSections, ins.Index)
			insertedPlain[ins.Key] = true
		} else {
			in.MoveSections = append(in.MoveSections, Move{From: *ins.AssociatedWith, To: ins.Index})
		}
	}

	// Row-level diff for every surviving section: present on both sides
	// and not torn down by an unassociated delete+insert pair.
	type rowRemoval struct {
		path RowPath
		key  string
	}
	type rowInsertion struct {
		path RowPath
		key  string
	}
	var removals []rowRemoval
	var insertions []rowInsertion

	for oldIdx, oldSec := range old {
		newIdx := next.SectionIndex(oldSec.Key)
		if newIdx < 0 || removedPlain[oldSec.Key] || insertedPlain[oldSec.Key] {
			continue
		}

		rowCS := diffKeys(rowKeys(oldSec.Rows), rowKeys(next[newIdx].Rows))
		for _, r := range rowCS.Removals {
			removals = append(removals, rowRemoval{
				path: RowPath{Section: oldIdx, Row: r.Index},
				key:  r.Key,
			})
		}
		for _, ins := range rowCS.Insertions {
			insertions = append(insertions, rowInsertion{
				path: RowPath{Section: newIdx, Row: ins.Index},
				key:  ins.Key,
			})
		}
	}

	if !d.inferMoves {
		for _, r := range removals {
			in.DeleteRows = append(in.DeleteRows, r.path)
		}
		for _, ins := range insertions {
			in.InsertRows = append(in.InsertRows, ins.path)
		}
		return in
	}

	// Row move inference is global: a row removed from one surviving
	// section and inserted into another correlates into a single move.
	// Rows of torn-down section pairs never reach this point, so a row
	// cannot be inferred as moved between two unrelated sections.
	removalAt := make(map[string]RowPath, len(removals))
	for _, r := range removals {
		removalAt[r.key] = r.path
	}

	paired := make(map[string]bool)
	for _, ins := range insertions {
		if from, ok := removalAt[ins.key]; ok {
			in.MoveRows = append(in.MoveRows, RowMove{From: from, To: ins.path})
			paired[ins.key] = true
			continue
		}
		in.InsertRows = append(in.InsertRows, ins.path)
	}
	for _, r := range removals {
		if !paired[r.key] {
			in.DeleteRows = append(in.DeleteRows, r.path)
		}
	}

	return in
}

// invertInstruction turns a next->old instruction into an old->next one
// by swapping delete/insert roles and reversing every move.
func invertInstruction(in *Instruction, target model.Snapshot) *Instruction {
	out := &Instruction{
		DeleteSections: in.InsertSections,
		InsertSections: in.DeleteSections,
		DeleteRows:     in.InsertRows,
		InsertRows:     in.DeleteRows,
		Target:         target,
	}
	for _, mv := range in.MoveSections {
		out.MoveSections = append(out.MoveSections, Move{From: mv.To, To: mv.From})
	}
	for _, mv := range in.MoveRows {
		out.MoveRows = append(out.MoveRows, RowMove{From: mv.To, To: mv.From})
	}
	return out
}

// sortInstruction normalizes operation order: ascending indexes, moves
// ordered by origin. Keeps instructions deterministic across
// orientations.
func sortInstruction(in *Instruction) {
	sort.Ints(in.DeleteSections)
	sort.Ints(in.InsertSections)
	sort.Slice(in.MoveSections, func(i, j int) bool {
		return in.MoveSections[i].From < in.MoveSections[j].From
	})
	sort.Slice(in.DeleteRows, func(i, j int) bool {
		return lessPath(in.DeleteRows[i], in.DeleteRows[j])
	})
	sort.Slice(in.InsertRows, func(i, j int) bool {
		return lessPath(in.InsertRows[i], in.InsertRows[j])
	})
	sort.Slice(in.MoveRows, func(i, j int) bool {
		return lessPath(in.MoveRows[i].From, in.MoveRows[j].From)
	})
}

func lessPath(a, b RowPath) bool {
	if a.Section != b.Section {
		return a.Section < b.Section
	}
	return a.Row < b.Row
}

func sectionKeys(snap model.Snapshot) []string {
	keys := make([]string, len(snap))
	for i, sec := range snap {
		keys[i] = sec.Key
	}
	return keys
}

func rowKeys(rows []model.Row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.IdentityKey()
	}
	return keys
}
