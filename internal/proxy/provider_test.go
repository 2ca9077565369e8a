package proxy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestUUIDHandleGenerator(t *testing.T) {
	gen := UUIDHandleGenerator{}

	a := gen.Generate()
	b := gen.Generate()

	assert.NotEqual(t, a, b)
	for _, raw := range []string{a, b} {
		id, err := uuid.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	h := NewHub(testutil.NewSeqHandleGenerator())

	h1 := h.Subscribe(Subscriber{})
	h2 := h.Subscribe(Subscriber{})

	assert.Equal(t, Handle("handle-1"), h1)
	assert.Equal(t, Handle("handle-2"), h2)
	assert.Equal(t, 2, h.Len())

	h.Unsubscribe(h1)
	assert.Equal(t, 1, h.Len())

	h.Unsubscribe(h1) // unknown handles are ignored
	assert.Equal(t, 1, h.Len())
}

func TestHub_NotifiesInSubscriptionOrder(t *testing.T) {
	h := NewHub(testutil.NewSeqHandleGenerator())
	var order []string

	for _, name := range []string{"first", "second", "third"} {
		name := name
		h.Subscribe(Subscriber{
			WillChange: func(next model.Snapshot) {
				order = append(order, name)
			},
		})
	}

	h.NotifyWillChange(snap("A"))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestHub_NilCallbacksSkipped(t *testing.T) {
	h := NewHub(nil)
	h.Subscribe(Subscriber{})

	assert.NotPanics(t, func() {
		h.NotifyWillChange(snap("A"))
		h.NotifyDidRefresh(true)
	})
}

func TestHub_UnsubscribeFromWithinNotification(t *testing.T) {
	h := NewHub(testutil.NewSeqHandleGenerator())

	var handle Handle
	fired := 0
	handle = h.Subscribe(Subscriber{
		DidRefresh: func(changed bool) {
			fired++
			h.Unsubscribe(handle)
		},
	})

	h.NotifyDidRefresh(true)
	h.NotifyDidRefresh(true)

	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, h.Len())
}

func TestStaticProvider_WillChangePrecedesSwap(t *testing.T) {
	p := NewStaticProvider(snap("A"), testutil.NewSeqHandleGenerator())
	next := snap("A", "B")

	var duringWillChange model.Snapshot
	p.Subscribe(Subscriber{
		WillChange: func(incoming model.Snapshot) {
			assert.True(t, model.IdentityEqual(next, incoming))
			duringWillChange = p.Sections()
		},
	})

	p.SetSections(next)

	assert.True(t, model.IdentityEqual(snap("A"), duringWillChange),
		"the provider view must still be the old content during WillChange")
	assert.True(t, model.IdentityEqual(next, p.Sections()))
}

func TestStaticProvider_DidRefreshChangedFlag(t *testing.T) {
	p := NewStaticProvider(snap("A"), testutil.NewSeqHandleGenerator())

	var flags []bool
	p.Subscribe(Subscriber{
		DidRefresh: func(changed bool) {
			flags = append(flags, changed)
		},
	})

	p.SetSections(snap("A", "B"))
	p.SetSections(snap("A", "B"))

	assert.Equal(t, []bool{true, false}, flags)
}
