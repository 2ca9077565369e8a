// Package sched provides a single-flight sequential task queue.
//
// The queue serializes asynchronous units of work submitted by
// possibly-concurrent callers. Ordering is achieved purely by chaining
// completion continuations: each dispatched unit first awaits the
// completion of the previously dispatched unit (ignoring its result or
// cancellation), then runs. No lock is held while units execute - the
// internal mutex only guards the atomic tail swap at dispatch time.
//
// This yields total ordering: units run strictly in submission order,
// one at a time, regardless of how many goroutines submit concurrently
// and regardless of how long any individual unit takes.
//
// Cancellation is cooperative. Cancelling a task prevents its visible
// effect (the unit observes a cancelled context and must check it before
// performing externally visible work), but does not skip its chain
// position: the next queued unit still waits for the cancelled unit to
// finish, preserving total order.
//
// NOT REENTRANT: a unit must not dispatch to its own queue and wait for
// the result synchronously from within its own body - the new unit is
// chained behind the running one and the wait would deadlock.
package sched

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is returned by a task whose context was cancelled before
// its unit ran, or whose unit surfaced the cancellation.
var ErrCancelled = errors.New("sched: task cancelled")

// Unit is one schedulable piece of work. The context is cancelled when
// the task is cancelled; the unit must check it before performing
// externally visible effects.
type Unit func(ctx context.Context) error

// Task is the caller's handle to one dispatched unit.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Wait blocks until the unit has finished (or ctx is cancelled) and
// returns the unit's error. A cancelled task returns ErrCancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return t.Err()
	}
}

// Done returns a channel closed when the unit has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the unit's error, or nil if it succeeded or has not
// finished yet.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Cancel marks the task as cancelled by cancelling its context.
// In-flight work is not forcibly interrupted; the unit's body is
// responsible for checking its context. The task still occupies its
// chain slot either way.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Queue is the single-flight chain. The zero value is ready to use.
//
// Thread-safety: Dispatch and Cancel may be called from any goroutine.
type Queue struct {
	mu   sync.Mutex
	tail <-chan struct{} // completion of the most recently dispatched unit
	last *Task
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Dispatch chains unit behind the most recently dispatched unit and
// returns a handle immediately. The unit starts only after every
// previously dispatched unit has finished, whatever their outcome.
func (q *Queue) Dispatch(ctx context.Context, unit Unit) *Task {
	unitCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	// Atomically become the new tail. Everything after this point runs
	// without the lock, so a slow unit never blocks dispatching.
	q.mu.Lock()
	prev := q.tail
	q.tail = t.done
	q.last = t
	q.mu.Unlock()

	go func() {
		defer cancel()
		defer close(t.done)

		if prev != nil {
			// Await the predecessor. Its result and cancellation state
			// are deliberately ignored: order is the only dependency.
			<-prev
		}

		if err := unitCtx.Err(); err != nil {
			t.setErr(ErrCancelled)
			return
		}

		if err := unit(unitCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				err = ErrCancelled
			}
			t.setErr(err)
		}
	}()

	return t
}

// Cancel cancels the most recently dispatched task, if any.
// Units dispatched afterwards are unaffected.
func (q *Queue) Cancel() {
	q.mu.Lock()
	last := q.last
	q.mu.Unlock()

	if last != nil {
		last.Cancel()
	}
}
