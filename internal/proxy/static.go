package proxy

import (
	"sync"

	"github.com/ezoushen/listproxy/internal/model"
)

// StaticProvider is an in-memory NotifyingProvider. Content changes
// only through SetSections, which drives the full notification
// sequence: WillChange with the incoming snapshot, then the swap, then
// DidRefresh with whether the content actually differed.
//
// Thread-safety: safe for concurrent use. Notifications run outside
// the lock.
type StaticProvider struct {
	*Hub

	mu       sync.Mutex
	snapshot model.Snapshot
}

// NewStaticProvider creates a provider with an initial snapshot. gen
// may be nil for UUIDv7 handles.
func NewStaticProvider(initial model.Snapshot, gen HandleGenerator) *StaticProvider {
	return &StaticProvider{
		Hub:      NewHub(gen),
		snapshot: initial,
	}
}

// Sections implements Provider.
func (p *StaticProvider) Sections() model.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// SetSections adopts next and notifies subscribers.
func (p *StaticProvider) SetSections(next model.Snapshot) {
	p.NotifyWillChange(next)

	p.mu.Lock()
	changed := p.snapshot.ContentHash() != next.ContentHash()
	p.snapshot = next
	p.mu.Unlock()

	p.NotifyDidRefresh(changed)
}
