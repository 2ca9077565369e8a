package testutil

import (
	"fmt"
	"sync"
)

// SeqHandleGenerator returns "handle-1", "handle-2", ... in order.
//
// Unlike the production UUIDv7 generator, handles are predictable, so
// subscription tests can assert on exact registry contents and golden
// output stays byte-stable.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SeqHandleGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSeqHandleGenerator creates a generator starting at handle-1.
func NewSeqHandleGenerator() *SeqHandleGenerator {
	return &SeqHandleGenerator{}
}

// Generate returns the next handle in sequence.
func (g *SeqHandleGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("handle-%d", g.n)
}
