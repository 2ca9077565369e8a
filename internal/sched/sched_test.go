package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsUnit(t *testing.T) {
	q := NewQueue()
	ran := false

	task := q.Dispatch(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, task.Wait(context.Background()))
	assert.True(t, ran)
}

func TestQueue_SubmissionOrder(t *testing.T) {
	q := NewQueue()

	var mu sync.Mutex
	var order []int

	// The first unit is slow; later units must still run after it.
	release := make(chan struct{})
	first := q.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		return nil
	})

	second := q.Dispatch(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		return nil
	})

	third := q.Dispatch(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		order = append(order, 3)
		mu.Unlock()
		return nil
	})

	close(release)
	require.NoError(t, first.Wait(context.Background()))
	require.NoError(t, second.Wait(context.Background()))
	require.NoError(t, third.Wait(context.Background()))

	assert.Equal(t, []int{1, 2, 3}, order,
		"units must run in submission order regardless of latency")
}

func TestQueue_ConcurrentDispatchersNeverInterleave(t *testing.T) {
	q := NewQueue()

	var mu sync.Mutex
	running := 0
	maxRunning := 0
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := q.Dispatch(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				total++
				mu.Unlock()
				return nil
			})
			_ = task.Wait(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, total)
	assert.Equal(t, 1, maxRunning, "at most one unit may run at a time")
}

func TestQueue_CancelBeforeRunSkipsEffect(t *testing.T) {
	q := NewQueue()

	release := make(chan struct{})
	blocker := q.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	ran := false
	cancelled := q.Dispatch(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	cancelled.Cancel()

	// A later unit still runs: cancellation does not break the chain.
	after := q.Dispatch(context.Background(), func(ctx context.Context) error {
		return nil
	})

	close(release)
	require.NoError(t, blocker.Wait(context.Background()))
	assert.ErrorIs(t, cancelled.Wait(context.Background()), ErrCancelled)
	require.NoError(t, after.Wait(context.Background()))
	assert.False(t, ran, "a cancelled unit must not run its body")
}

func TestQueue_CancelledUnitHoldsChainSlot(t *testing.T) {
	q := NewQueue()

	release := make(chan struct{})
	slowCancelled := q.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		// Cooperative cancellation: visible effects are skipped but the
		// unit finishes normally from the chain's point of view.
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return nil
	})

	nextRan := make(chan struct{})
	next := q.Dispatch(context.Background(), func(ctx context.Context) error {
		close(nextRan)
		return nil
	})

	slowCancelled.Cancel()

	// The successor must not start until the cancelled unit finishes.
	select {
	case <-nextRan:
		t.Fatal("successor ran before cancelled predecessor finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.NoError(t, next.Wait(context.Background()))
	assert.ErrorIs(t, slowCancelled.Wait(context.Background()), ErrCancelled)
}

func TestQueue_UnitErrorPropagates(t *testing.T) {
	q := NewQueue()
	boom := errors.New("boom")

	task := q.Dispatch(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, task.Wait(context.Background()), boom)
}

func TestQueue_ErrorDoesNotBreakChain(t *testing.T) {
	q := NewQueue()

	failed := q.Dispatch(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	ok := q.Dispatch(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.Error(t, failed.Wait(context.Background()))
	assert.NoError(t, ok.Wait(context.Background()))
}

func TestQueue_CancelMostRecent(t *testing.T) {
	q := NewQueue()

	release := make(chan struct{})
	blocker := q.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})
	victim := q.Dispatch(context.Background(), func(ctx context.Context) error {
		return nil
	})

	q.Cancel() // cancels victim, the most recently dispatched

	close(release)
	require.NoError(t, blocker.Wait(context.Background()))
	assert.ErrorIs(t, victim.Wait(context.Background()), ErrCancelled)
}

func TestQueue_ParentContextCancellation(t *testing.T) {
	q := NewQueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	task := q.Dispatch(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, task.Wait(context.Background()), ErrCancelled)
	assert.False(t, ran, "unit must not run under a cancelled parent context")
}

func TestQueue_WaitRespectsCallerContext(t *testing.T) {
	q := NewQueue()

	release := make(chan struct{})
	defer close(release)
	task := q.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := task.Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_StrictOrderAcrossLatencies(t *testing.T) {
	// Three submissions from three goroutines, coordinated so the
	// temporal submission order is 1, 2, 3 but unit 1 is the slowest.
	// Applications must still observe 1, 2, 3.
	q := NewQueue()

	var mu sync.Mutex
	var applied []int

	var tasks []*Task

	for i := 1; i <= 3; i++ {
		i := i
		delay := time.Duration(4-i) * 10 * time.Millisecond
		task := q.Dispatch(context.Background(), func(ctx context.Context) error {
			time.Sleep(delay) // inverse latency: later units are faster
			mu.Lock()
			applied = append(applied, i)
			mu.Unlock()
			return nil
		})
		tasks = append(tasks, task)
	}

	for _, task := range tasks {
		require.NoError(t, task.Wait(context.Background()))
	}
	assert.Equal(t, []int{1, 2, 3}, applied)
}
