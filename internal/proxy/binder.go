package proxy

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/ezoushen/listproxy/internal/animator"
	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
	"github.com/ezoushen/listproxy/internal/sched"
)

// ErrSuperseded is returned by PerformBatchUpdates when a newer reload
// or batch update was scheduled before the update got to run. The
// mutation callback is not invoked in that case.
var ErrSuperseded = errors.New("proxy: batch update superseded")

// ApplyObserver is notified after every animated instruction the sink
// accepted. before and after are the snapshots on either side of the
// application. Observers run inside the serialized unit, so they must
// not dispatch back to the binder.
type ApplyObserver interface {
	InstructionApplied(ctx context.Context, before, after model.Snapshot, in *diffkit.Instruction)
}

// Binder keeps one widget in sync with one provider.
//
// All snapshot mutation flows through a single sequential queue:
// explicit reloads, batch updates, provider change notifications and
// reorder-gesture adoption are mutually ordered and touch the animator
// one at a time. Callers never need their own locking.
type Binder struct {
	provider Provider
	sink     animator.Sink
	anim     *animator.Animator
	queue    *sched.Queue
	logger   *slog.Logger

	observers []ApplyObserver

	// gen counts scheduled content adoptions; a batch update whose
	// generation is stale at run time has been superseded.
	gen atomic.Int64

	np     NotifyingProvider
	handle Handle
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithDiffOptions configures the differ used for instruction
// computation, e.g. diffkit.WithMoveInference().
func WithDiffOptions(opts ...diffkit.Option) BinderOption {
	return func(b *Binder) {
		b.anim = animator.New(diffkit.New(opts...))
	}
}

// WithBinderLogger sets the logger. Defaults to slog.Default().
func WithBinderLogger(logger *slog.Logger) BinderOption {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithObserver registers an observer for applied instructions, e.g. a
// journal recorder. May be given multiple times; observers fire in
// registration order.
func WithObserver(o ApplyObserver) BinderOption {
	return func(b *Binder) {
		b.observers = append(b.observers, o)
	}
}

// NewBinder wires provider and sink together. If the provider is a
// NotifyingProvider the binder subscribes immediately; Close releases
// the subscription.
func NewBinder(provider Provider, sink animator.Sink, opts ...BinderOption) *Binder {
	b := &Binder{
		provider: provider,
		sink:     sink,
		anim:     animator.New(diffkit.New()),
		queue:    sched.NewQueue(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if np, ok := provider.(NotifyingProvider); ok {
		b.np = np
		b.handle = np.Subscribe(Subscriber{
			WillChange: b.onWillChange,
			DidRefresh: b.onDidRefresh,
		})
	}
	return b
}

// Close releases the provider subscription, if any. Queued work is
// left to drain.
func (b *Binder) Close() {
	if b.np != nil {
		b.np.Unsubscribe(b.handle)
	}
}

// Snapshot returns the currently materialized snapshot. Only safe to
// read once outstanding tasks have been waited on.
func (b *Binder) Snapshot() model.Snapshot {
	return b.anim.Snapshot()
}

// Reload schedules an adoption of the provider's current content and
// waits for it. Returns true when the widget was actually mutated
// (animated instruction applied, or first render materialized); false
// for a no-op, a declined application or a cancelled task.
func (b *Binder) Reload(ctx context.Context) (bool, error) {
	b.gen.Add(1)

	var mutated bool
	task := b.queue.Dispatch(ctx, func(ctx context.Context) error {
		m, err := b.applyLatest(ctx)
		mutated = m
		return err
	})

	if err := task.Wait(ctx); err != nil {
		if errors.Is(err, sched.ErrCancelled) || errors.Is(err, context.Canceled) {
			return false, nil
		}
		return false, err
	}
	return mutated, nil
}

// PerformBatchUpdates schedules mutate on the queue. The callback is
// expected to mutate the widget directly and return the resulting
// snapshot, which the binder adopts silently (no instruction, no sink
// call). If a newer reload or batch update was scheduled before mutate
// got to run, the callback is skipped and ErrSuperseded is returned.
func (b *Binder) PerformBatchUpdates(ctx context.Context, mutate func(ctx context.Context) (model.Snapshot, error)) error {
	gen := b.gen.Add(1)

	task := b.queue.Dispatch(ctx, func(ctx context.Context) error {
		if b.gen.Load() != gen {
			return ErrSuperseded
		}
		next, err := mutate(ctx)
		if err != nil {
			return err
		}
		b.anim.UpdateSnapshot(next)
		return nil
	})

	err := task.Wait(ctx)
	if errors.Is(err, sched.ErrCancelled) {
		return ErrSuperseded
	}
	return err
}

// Cancel cancels the most recently scheduled task. The task keeps its
// chain slot; later work is unaffected.
func (b *Binder) Cancel() {
	b.queue.Cancel()
}

// Wait drains the queue: it blocks until everything scheduled so far
// has finished.
func (b *Binder) Wait(ctx context.Context) error {
	task := b.queue.Dispatch(ctx, func(ctx context.Context) error {
		return nil
	})
	return task.Wait(ctx)
}

// Delegate returns the widget-facing delegate: the fallback's behavior
// plus adoption of completed reorder gestures, so a direct move is not
// re-animated by the next reload.
func (b *Binder) Delegate(fallback Delegate) Delegate {
	base := NewProxy(fallback)
	return Intercept(base, Hooks{
		MoveRow: func(from, to diffkit.RowPath) {
			base.MoveRow(from, to)
			b.queue.Dispatch(context.Background(), func(ctx context.Context) error {
				cur := b.anim.Snapshot()
				if cur == nil {
					return nil
				}
				b.anim.UpdateSnapshot(moveRow(cur, from, to))
				return nil
			})
		},
	})
}

// onWillChange eagerly computes the instruction toward the incoming
// snapshot so it is already cached by the time DidRefresh schedules
// the application.
func (b *Binder) onWillChange(next model.Snapshot) {
	b.queue.Dispatch(context.Background(), func(ctx context.Context) error {
		b.anim.PrepareInstruction(next)
		return nil
	})
}

func (b *Binder) onDidRefresh(changed bool) {
	if !changed {
		return
	}
	b.gen.Add(1)
	b.queue.Dispatch(context.Background(), func(ctx context.Context) error {
		_, err := b.applyLatest(ctx)
		if err != nil {
			b.logger.Error("provider refresh application failed", "error", err)
		}
		return err
	})
}

// applyLatest runs inside a serialized unit. It reads the provider's
// current content and advances the animator through the sink.
func (b *Binder) applyLatest(ctx context.Context) (bool, error) {
	next := b.provider.Sections()
	before := b.anim.Snapshot()

	if before == nil {
		return b.anim.ConsumeAndAdvance(ctx, next, b.sink)
	}

	in := b.anim.PrepareInstruction(next)
	applied, err := b.anim.ConsumeAndAdvance(ctx, next, b.sink)
	if err != nil || !applied {
		return false, err
	}
	if in.Empty() {
		return false, nil
	}

	for _, o := range b.observers {
		o.InstructionApplied(ctx, before, in.Target, in)
	}
	b.logger.Debug("instruction applied",
		"ops", in.OpCount(),
		"target_hash", in.TargetHash())
	return true, nil
}

// moveRow returns a copy of snapshot with the row at from relocated to
// to. from addresses the pre-removal index space, to the post-removal
// space, matching widget reorder-gesture semantics. Out-of-range paths
// return the snapshot unchanged.
func moveRow(snapshot model.Snapshot, from, to diffkit.RowPath) model.Snapshot {
	if from.Section < 0 || from.Section >= len(snapshot) ||
		to.Section < 0 || to.Section >= len(snapshot) {
		return snapshot
	}
	if from.Row < 0 || from.Row >= len(snapshot[from.Section].Rows) {
		return snapshot
	}

	out := make(model.Snapshot, len(snapshot))
	for i, sec := range snapshot {
		rows := make([]model.Row, len(sec.Rows))
		copy(rows, sec.Rows)
		out[i] = model.Section{Key: sec.Key, Rows: rows}
	}

	row := out[from.Section].Rows[from.Row]
	src := out[from.Section].Rows
	out[from.Section].Rows = append(src[:from.Row], src[from.Row+1:]...)

	dst := out[to.Section].Rows
	if to.Row < 0 || to.Row > len(dst) {
		return snapshot
	}
	dst = append(dst, nil)
	copy(dst[to.Row+1:], dst[to.Row:])
	dst[to.Row] = row
	out[to.Section].Rows = dst

	return out
}
