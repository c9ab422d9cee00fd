package framegraph

import (
	"fmt"
	"sync"
)

// Pool caches previously allocated native objects keyed by descriptor
// hash so frames can reuse GPU memory instead of reallocating it. The
// core calls these four methods; it never allocates or destroys native
// objects through the pool itself.
//
// Frame-allocation registration exists purely for bookkeeping: it lets
// the pool (and debug tooling) know which objects are live in the current
// execution versus parked for reuse.
type Pool interface {
	// TryGetResource removes and returns a parked object matching hash.
	TryGetResource(hash uint64) (GraphicsResource, bool)

	// RegisterFrameAllocation marks res as live in the current frame.
	RegisterFrameAllocation(hash uint64, res GraphicsResource)

	// UnregisterFrameAllocation removes the live mark for res.
	UnregisterFrameAllocation(hash uint64, res GraphicsResource)

	// ReleaseResource parks res for reuse under hash. frameIndex stamps
	// the entry so stale inventory can be purged later.
	ReleaseResource(hash uint64, res GraphicsResource, frameIndex int)
}

// PoolStats contains resource pool usage statistics.
type PoolStats struct {
	// Hits is the number of TryGetResource calls served from inventory.
	Hits uint64

	// Misses is the number of TryGetResource calls that found nothing.
	Misses uint64

	// Parked is the number of objects currently parked for reuse.
	Parked int

	// Live is the number of objects registered to the current frame.
	Live int

	// Purged is the total number of stale objects destroyed by purging.
	Purged uint64
}

// String returns a human-readable string of pool stats.
func (s PoolStats) String() string {
	return fmt.Sprintf("Pool[%d hits, %d misses, %d parked, %d live, %d purged]",
		s.Hits, s.Misses, s.Parked, s.Live, s.Purged)
}

// parkedEntry is one reusable object with the frame it was parked in.
type parkedEntry struct {
	res         GraphicsResource
	frameParked int
}

// MemoryPool is the default in-process Pool: per-hash free stacks plus a
// live-allocation registry. Most recently parked objects are handed out
// first, which keeps reuse warm in the driver's own caches.
//
// MemoryPool is safe for concurrent use, although the declaration layer
// above it is single-threaded by contract.
type MemoryPool struct {
	mu     sync.Mutex
	parked map[uint64][]parkedEntry
	live   map[GraphicsResource]uint64

	hits   uint64
	misses uint64
	purged uint64
}

// NewMemoryPool creates an empty resource pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		parked: make(map[uint64][]parkedEntry),
		live:   make(map[GraphicsResource]uint64),
	}
}

// TryGetResource pops the most recently parked object matching hash.
func (p *MemoryPool) TryGetResource(hash uint64) (GraphicsResource, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stack := p.parked[hash]
	if len(stack) == 0 {
		p.misses++
		return nil, false
	}

	entry := stack[len(stack)-1]
	stack[len(stack)-1] = parkedEntry{}
	p.parked[hash] = stack[:len(stack)-1]
	p.hits++
	return entry.res, true
}

// RegisterFrameAllocation marks res live under hash.
func (p *MemoryPool) RegisterFrameAllocation(hash uint64, res GraphicsResource) {
	p.mu.Lock()
	p.live[res] = hash
	p.mu.Unlock()
}

// UnregisterFrameAllocation removes the live mark for res.
func (p *MemoryPool) UnregisterFrameAllocation(hash uint64, res GraphicsResource) {
	p.mu.Lock()
	delete(p.live, res)
	p.mu.Unlock()
}

// ReleaseResource parks res for reuse under hash.
func (p *MemoryPool) ReleaseResource(hash uint64, res GraphicsResource, frameIndex int) {
	p.mu.Lock()
	p.parked[hash] = append(p.parked[hash], parkedEntry{res: res, frameParked: frameIndex})
	p.mu.Unlock()
}

// PurgeUnusedResources destroys parked objects that have not been reused
// for more than maxAge frames, counted back from currentFrame. Call it at
// end of frame to trim inventory after resolution changes or scene loads.
// Returns the number of objects destroyed.
func (p *MemoryPool) PurgeUnusedResources(currentFrame, maxAge int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	purged := 0
	for hash, stack := range p.parked {
		kept := stack[:0]
		for _, entry := range stack {
			if currentFrame-entry.frameParked > maxAge {
				entry.res.Release()
				purged++
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(p.parked, hash)
		} else {
			p.parked[hash] = kept
		}
	}
	p.purged += uint64(purged)

	if purged > 0 {
		Logger().Debug("framegraph: purged stale pooled resources",
			"count", purged, "frame", currentFrame)
	}
	return purged
}

// Clear destroys every parked object. Live objects are untouched.
func (p *MemoryPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for hash, stack := range p.parked {
		for _, entry := range stack {
			entry.res.Release()
		}
		delete(p.parked, hash)
	}
}

// Stats returns current pool statistics.
func (p *MemoryPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	parked := 0
	for _, stack := range p.parked {
		parked += len(stack)
	}
	return PoolStats{
		Hits:   p.hits,
		Misses: p.misses,
		Parked: parked,
		Live:   len(p.live),
		Purged: p.purged,
	}
}

// Ensure MemoryPool implements Pool.
var _ Pool = (*MemoryPool)(nil)
