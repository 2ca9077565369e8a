// Package animator owns the materialized-snapshot state machine that
// sits between the diff engine and the widget-mutation boundary.
//
// The machine is long-lived and cycles between two states for the life
// of a widget binding:
//
//	Empty -> Materialized(snapshot) [+ optional pending instruction]
//
// At most one un-applied instruction exists at any time, and adopting a
// newer snapshot always invalidates it. That makes instruction
// preparation idempotent and safe to defer: an instruction can be
// computed eagerly on a change notification and thrown away if a newer
// snapshot supersedes it before the sink consumes it.
//
// CRITICAL: the animator is NOT thread-safe by itself. Every method
// that touches the snapshot/pending pair must run inside a
// scheduler-serialized unit on the coordination context; diffing itself
// is pure and is the only part safe to run elsewhere.
package animator

import (
	"context"
	"log/slog"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// Sink is the external widget-mutation boundary.
//
// Apply must perform the instruction's operations in the order: delete
// rows, delete sections, move sections, insert sections, insert rows,
// move rows - deletes and move origins against the pre-mutation index
// space, inserts and move destinations against the post-mutation space.
// The returned bool reports whether the mutation was actually applied
// (false = cancelled or refused, which is not an error).
//
// Materialize replaces the widget content wholesale, without animation.
// Used for the first render and for silent adoption.
type Sink interface {
	Apply(ctx context.Context, in *diffkit.Instruction) (bool, error)
	Materialize(ctx context.Context, snapshot model.Snapshot) error
}

// Animator is the snapshot/pending-instruction state machine.
type Animator struct {
	differ *diffkit.Differ
	logger *slog.Logger

	snapshot model.Snapshot // nil = Empty state
	pending  *diffkit.Instruction
}

// AnimatorOption configures an Animator.
type AnimatorOption func(*Animator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) AnimatorOption {
	return func(a *Animator) {
		a.logger = logger
	}
}

// New creates an animator in the Empty state.
func New(differ *diffkit.Differ, opts ...AnimatorOption) *Animator {
	a := &Animator{
		differ: differ,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshot returns the currently materialized snapshot (nil when Empty).
func (a *Animator) Snapshot() model.Snapshot {
	return a.snapshot
}

// Pending returns the cached un-applied instruction, if any.
func (a *Animator) Pending() *diffkit.Instruction {
	return a.pending
}

// UpdateSnapshot unconditionally adopts next and discards any pending
// instruction. Used to silently take over new data without animating,
// e.g. after a legacy reorder gesture already mutated the widget
// directly.
func (a *Animator) UpdateSnapshot(next model.Snapshot) {
	if a.pending != nil {
		a.logger.Debug("discarding pending instruction on snapshot update")
	}
	a.pending = nil
	a.snapshot = next
}

// PrepareInstruction computes the instruction from the current snapshot
// to next and caches it as pending.
//
// Returns nil when the machine is Empty: no instruction can be computed
// against nothing, and the caller must do a full unanimated
// materialization instead.
//
// If the pending instruction was already computed against a snapshot
// with the same content hash as next, it is reused rather than
// recomputed.
func (a *Animator) PrepareInstruction(next model.Snapshot) *diffkit.Instruction {
	if a.snapshot == nil {
		return nil
	}

	if a.pending != nil && a.pending.TargetHash() == next.ContentHash() {
		return a.pending
	}

	a.pending = a.differ.Diff(a.snapshot, next)
	a.logger.Debug("prepared instruction",
		"ops", a.pending.OpCount(),
		"target_hash", a.pending.TargetHash())
	return a.pending
}

// ConsumeAndAdvance hands the pending instruction (computing it on
// demand against next) to the sink, and on completion advances the
// snapshot to the instruction's target and clears the pending slot.
//
// From the Empty state the sink is asked to materialize next wholesale
// instead; that always counts as applied.
//
// An empty instruction skips the sink entirely and advances directly -
// a no-op is success, not an error. If the sink reports "did not apply",
// the snapshot is left unchanged and the instruction is discarded
// (false, nil).
func (a *Animator) ConsumeAndAdvance(ctx context.Context, next model.Snapshot, sink Sink) (bool, error) {
	if a.snapshot == nil {
		if err := sink.Materialize(ctx, next); err != nil {
			return false, err
		}
		a.snapshot = next
		a.pending = nil
		return true, nil
	}

	in := a.PrepareInstruction(next)
	a.pending = nil

	if in.Empty() {
		a.snapshot = in.Target
		return true, nil
	}

	applied, err := sink.Apply(ctx, in)
	if err != nil {
		return false, err
	}
	if !applied {
		a.logger.Debug("sink declined instruction", "ops", in.OpCount())
		return false, nil
	}

	a.snapshot = in.Target
	return true, nil
}
