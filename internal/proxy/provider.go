package proxy

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ezoushen/listproxy/internal/model"
)

// Provider is the external content source. Sections must return a
// complete, self-consistent snapshot; the sync layer never mutates it.
type Provider interface {
	Sections() model.Snapshot
}

// NotifyingProvider is a Provider that announces its own changes.
// Binders subscribe automatically when the provider supports it.
type NotifyingProvider interface {
	Provider

	// Subscribe registers interest in change notifications and returns
	// the handle that owns the registration.
	Subscribe(sub Subscriber) Handle

	// Unsubscribe removes the registration owned by handle. Unknown
	// handles are ignored.
	Unsubscribe(handle Handle)
}

// Subscriber receives provider change notifications. Either callback
// may be nil.
//
// WillChange fires before the provider's Sections view updates, with
// the snapshot about to be adopted; DidRefresh fires after, with
// changed=false when the refresh produced identical content.
type Subscriber struct {
	WillChange func(next model.Snapshot)
	DidRefresh func(changed bool)
}

// Handle identifies one subscription. Callers keep it and unsubscribe
// on teardown; a dropped handle leaks the registration.
type Handle string

// HandleGenerator mints subscription handles.
type HandleGenerator interface {
	Generate() string
}

// UUIDHandleGenerator mints time-ordered UUIDv7 handles. The ordering
// property means handles sort by subscription time, which keeps
// notification order stable even if the registry is ever rebuilt.
type UUIDHandleGenerator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDHandleGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; there is no
		// sensible recovery for a handle mint.
		panic(fmt.Sprintf("proxy: uuid generation failed: %v", err))
	}
	return id.String()
}

// Hub is a subscription registry that providers embed or wrap to gain
// NotifyingProvider semantics. Notifications fan out synchronously in
// subscription order.
//
// Thread-safety: safe for concurrent use. Callbacks run outside the
// hub lock, so a subscriber may unsubscribe itself from within a
// notification.
type Hub struct {
	gen HandleGenerator

	mu    sync.Mutex
	order []Handle
	subs  map[Handle]Subscriber
}

// NewHub creates a hub minting handles with gen. A nil gen defaults to
// UUIDv7 handles.
func NewHub(gen HandleGenerator) *Hub {
	if gen == nil {
		gen = UUIDHandleGenerator{}
	}
	return &Hub{
		gen:  gen,
		subs: make(map[Handle]Subscriber),
	}
}

// Subscribe registers sub and returns its owning handle.
func (h *Hub) Subscribe(sub Subscriber) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	handle := Handle(h.gen.Generate())
	h.order = append(h.order, handle)
	h.subs[handle] = sub
	return handle
}

// Unsubscribe removes the registration owned by handle.
func (h *Hub) Unsubscribe(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[handle]; !ok {
		return
	}
	delete(h.subs, handle)
	for i, v := range h.order {
		if v == handle {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// NotifyWillChange fans out WillChange with the snapshot about to be
// adopted.
func (h *Hub) NotifyWillChange(next model.Snapshot) {
	for _, sub := range h.snapshotSubs() {
		if sub.WillChange != nil {
			sub.WillChange(next)
		}
	}
}

// NotifyDidRefresh fans out DidRefresh.
func (h *Hub) NotifyDidRefresh(changed bool) {
	for _, sub := range h.snapshotSubs() {
		if sub.DidRefresh != nil {
			sub.DidRefresh(changed)
		}
	}
}

func (h *Hub) snapshotSubs() []Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Subscriber, 0, len(h.order))
	for _, handle := range h.order {
		out = append(out, h.subs[handle])
	}
	return out
}
