package cache

import (
	"container/list"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/empower1/wasmvm/internal/types"
)

// memoryLRU is the size-bounded (bytes, not entry count, per §4.8's
// eviction invariant) in-memory tier. Grounded on the teacher's
// sync.RWMutex-guarded map discipline (internal/state.State) generalized
// with an intrusive doubly-linked list for O(1) touch-to-MRU/evict, and
// striped across stripeCount locks (github.com/cespare/xxhash/v2 picks
// the stripe) so the common hit path's critical section stays short (spec
// §5).
type memoryLRU struct {
	maxBytes    uint64
	stripeCount int
	clk         clock.Clock

	stripes []*lruStripe
}

type lruStripe struct {
	mu        sync.Mutex
	order     *list.List // MRU at front
	entries   map[types.Checksum]*list.Element
	sizeBytes uint64
	maxBytes  uint64
}

type lruEntry struct {
	checksum  types.Checksum
	mod       *CachedModule
	lastTouch int64
}

func newMemoryLRU(maxBytes uint64, stripeCount int, clk clock.Clock) *memoryLRU {
	perStripe := maxBytes / uint64(stripeCount)
	stripes := make([]*lruStripe, stripeCount)
	for i := range stripes {
		stripes[i] = &lruStripe{
			order:    list.New(),
			entries:  make(map[types.Checksum]*list.Element),
			maxBytes: perStripe,
		}
	}
	return &memoryLRU{maxBytes: maxBytes, stripeCount: stripeCount, clk: clk, stripes: stripes}
}

func (m *memoryLRU) stripe(checksum types.Checksum) *lruStripe {
	return m.stripes[stripeFor(checksum, m.stripeCount)]
}

func (m *memoryLRU) get(checksum types.Checksum) (*CachedModule, bool) {
	s := m.stripe(checksum)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[checksum]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	entry := el.Value.(*lruEntry)
	entry.lastTouch = m.clk.Now().UnixNano()
	return entry.mod, true
}

func (m *memoryLRU) put(checksum types.Checksum, mod *CachedModule) {
	s := m.stripe(checksum)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[checksum]; ok {
		old := el.Value.(*lruEntry)
		s.sizeBytes -= uint64(old.mod.sizeBytes)
		s.order.Remove(el)
		delete(s.entries, checksum)
	}

	entry := &lruEntry{checksum: checksum, mod: mod, lastTouch: m.clk.Now().UnixNano()}
	el := s.order.PushFront(entry)
	s.entries[checksum] = el
	s.sizeBytes += uint64(mod.sizeBytes)

	for s.sizeBytes > s.maxBytes && s.order.Len() > 0 {
		back := s.order.Back()
		if back == nil {
			break
		}
		victim := back.Value.(*lruEntry)
		s.order.Remove(back)
		delete(s.entries, victim.checksum)
		s.sizeBytes -= uint64(victim.mod.sizeBytes)
	}
}
