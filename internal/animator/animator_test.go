package animator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
	"github.com/ezoushen/listproxy/internal/testutil"
)

func snap(keys ...string) model.Snapshot {
	s := make(model.Snapshot, len(keys))
	for i, k := range keys {
		s[i] = model.NewSection(k)
	}
	return s
}

func TestAnimator_StartsEmpty(t *testing.T) {
	a := New(diffkit.New())
	assert.Nil(t, a.Snapshot())
	assert.Nil(t, a.Pending())
}

func TestAnimator_PrepareFromEmptyReturnsNil(t *testing.T) {
	a := New(diffkit.New())

	in := a.PrepareInstruction(snap("A"))

	assert.Nil(t, in, "no instruction can be computed against Empty")
	assert.Nil(t, a.Pending())
}

func TestAnimator_FirstRenderMaterializes(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	next := snap("A", "B")

	applied, err := a.ConsumeAndAdvance(context.Background(), next, sink)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, sink.Materialized(), 1)
	assert.Empty(t, sink.Applied(), "first render must not go through Apply")
	assert.True(t, model.IdentityEqual(next, a.Snapshot()))
}

func TestAnimator_PrepareCachesPending(t *testing.T) {
	a := New(diffkit.New())
	a.UpdateSnapshot(snap("A"))

	in := a.PrepareInstruction(snap("A", "B"))

	require.NotNil(t, in)
	assert.Same(t, in, a.Pending())
	assert.Equal(t, []int{1}, in.InsertSections)
}

func TestAnimator_PrepareReusesCachedForSameTarget(t *testing.T) {
	a := New(diffkit.New())
	a.UpdateSnapshot(snap("A"))

	next := snap("A", "B")
	first := a.PrepareInstruction(next)
	second := a.PrepareInstruction(snap("A", "B"))

	assert.Same(t, first, second,
		"content-identical target must reuse the cached instruction")
}

func TestAnimator_PrepareRecomputesForNewTarget(t *testing.T) {
	a := New(diffkit.New())
	a.UpdateSnapshot(snap("A"))

	first := a.PrepareInstruction(snap("A", "B"))
	second := a.PrepareInstruction(snap("A", "C"))

	assert.NotSame(t, first, second)
	assert.Same(t, second, a.Pending(),
		"a newer target replaces the pending instruction")
}

func TestAnimator_UpdateSnapshotDiscardsPending(t *testing.T) {
	a := New(diffkit.New())
	a.UpdateSnapshot(snap("A"))
	a.PrepareInstruction(snap("A", "B"))
	require.NotNil(t, a.Pending())

	silent := snap("X")
	a.UpdateSnapshot(silent)

	assert.Nil(t, a.Pending())
	assert.True(t, model.IdentityEqual(silent, a.Snapshot()))
}

func TestAnimator_ConsumeAppliesAndAdvances(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	old := snap("A")
	next := snap("A", "B")

	require.NoError(t, sink.Materialize(context.Background(), old))
	a.UpdateSnapshot(old)

	applied, err := a.ConsumeAndAdvance(context.Background(), next, sink)

	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, sink.Applied(), 1)
	assert.True(t, model.IdentityEqual(next, a.Snapshot()))
	assert.True(t, model.IdentityEqual(next, sink.State()),
		"sink state must match the advanced snapshot")
	assert.Nil(t, a.Pending(), "instruction is consumed exactly once")
}

func TestAnimator_ConsumeComputesOnDemand(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	old := snap("A")

	require.NoError(t, sink.Materialize(context.Background(), old))
	a.UpdateSnapshot(old)
	require.Nil(t, a.Pending())

	applied, err := a.ConsumeAndAdvance(context.Background(), snap("A", "B"), sink)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, sink.Applied(), 1)
}

func TestAnimator_EmptyInstructionSkipsSink(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	same := snap("A")

	a.UpdateSnapshot(same)
	applied, err := a.ConsumeAndAdvance(context.Background(), snap("A"), sink)

	require.NoError(t, err)
	assert.True(t, applied, "a no-op is success, not an error")
	assert.Empty(t, sink.Applied())
	assert.Empty(t, sink.Materialized())
}

func TestAnimator_SinkDeclineLeavesSnapshot(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	old := snap("A")

	require.NoError(t, sink.Materialize(context.Background(), old))
	a.UpdateSnapshot(old)
	sink.DeclineNext()

	applied, err := a.ConsumeAndAdvance(context.Background(), snap("A", "B"), sink)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, model.IdentityEqual(old, a.Snapshot()),
		"declined application must not advance the snapshot")
	assert.Nil(t, a.Pending())
}

func TestAnimator_ConsumeUsesPreparedInstruction(t *testing.T) {
	a := New(diffkit.New())
	sink := testutil.NewRecordingSink()
	old := snap("A")
	next := snap("A", "B")

	require.NoError(t, sink.Materialize(context.Background(), old))
	a.UpdateSnapshot(old)

	prepared := a.PrepareInstruction(next)
	applied, err := a.ConsumeAndAdvance(context.Background(), next, sink)

	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, sink.Applied(), 1)
	assert.Same(t, prepared, sink.Applied()[0],
		"a prepared instruction must be the one consumed")
}
