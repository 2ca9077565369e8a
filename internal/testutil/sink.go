// Package testutil provides deterministic collaborators for tests:
// a recording UI sink, a canned provider, and a fixed handle generator.
//
// Everything here is deliberately boring: fixed values, explicit
// triggers, no timing dependence. Tests that need scheduling pressure
// use the Gate channel to hold a sink mid-application.
package testutil

import (
	"context"
	"sync"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// RecordingSink is an in-memory Sink that applies instructions to a
// held snapshot using the reference applier and records everything it
// was asked to do.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, so scheduler tests can inspect state while units run.
type RecordingSink struct {
	mu sync.Mutex

	// Applied records every instruction handed to Apply, in order.
	applied []*diffkit.Instruction

	// materialized records every full materialization, in order.
	materialized []model.Snapshot

	// state is the sink's view of the widget content.
	state model.Snapshot

	// declineNext makes the next Apply report "did not apply" once.
	declineNext bool

	// Gate, when non-nil, blocks Apply until the channel is closed (or
	// the context is cancelled). Lets tests hold an application open
	// while more work is dispatched behind it.
	Gate chan struct{}

	// Entered, when non-nil, receives a signal (non-blocking send) as
	// Apply starts, before any gating. Lets tests detect that the queue
	// has reached the sink.
	Entered chan struct{}
}

// NewRecordingSink creates an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Apply implements animator.Sink. The instruction is executed against
// the held state with the reference applier, which panics if the
// instruction is inconsistent - exactly the fail-loud behavior a real
// widget would surface as a crash.
func (s *RecordingSink) Apply(ctx context.Context, in *diffkit.Instruction) (bool, error) {
	if s.Entered != nil {
		select {
		case s.Entered <- struct{}{}:
		default:
		}
	}
	if s.Gate != nil {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-s.Gate:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.declineNext {
		s.declineNext = false
		return false, nil
	}

	s.state = diffkit.Apply(s.state, in)
	s.applied = append(s.applied, in)
	return true, nil
}

// Materialize implements animator.Sink.
func (s *RecordingSink) Materialize(ctx context.Context, snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snapshot
	s.materialized = append(s.materialized, snapshot)
	return nil
}

// State returns the sink's current view of the widget content.
func (s *RecordingSink) State() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Applied returns the instructions applied so far, in order.
func (s *RecordingSink) Applied() []*diffkit.Instruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*diffkit.Instruction(nil), s.applied...)
}

// Materialized returns the full materializations so far, in order.
func (s *RecordingSink) Materialized() []model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Snapshot(nil), s.materialized...)
}

// DeclineNext makes the next Apply call report "did not apply" without
// mutating state. One-shot.
func (s *RecordingSink) DeclineNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declineNext = true
}
