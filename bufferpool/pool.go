// Package bufferpool implements the generalized-clock buffer pool
// manager described in spec.md §4.2: a fixed-size pool of page frames
// that mediates all access to a disk.Manager-backed heap file, loading
// pages on demand and evicting them under a clock-style replacement
// policy.
//
// Grounded on the teacher's internal/bufferpool/{pool,global_pool}.go
// (page table + pin/dirty bookkeeping shape) and
// original_source/src/buffer.rs (the usage-count sweep this package
// must match exactly; see clock.go).
package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/relaydb/pagecache/disk"
)

// ErrNoFreeBuffer is returned when every frame is currently pinned and
// eviction found no candidate within one full ring sweep. It signals
// back-pressure: the caller must release outstanding handles and retry.
var ErrNoFreeBuffer = errors.New("bufferpool: no free buffer available (all frames pinned)")

// BufferID indexes a frame in the pool. It is stable for the pool's
// lifetime.
type BufferID int

// Buffer is the in-memory content and metadata of one page resident in
// the pool. The pool relies on the caller to set Dirty; it never infers
// dirtiness on its own.
type Buffer struct {
	PageID disk.PageID
	Page   [disk.PageSize]byte
	Dirty  bool
}

// frame is one pool slot. bound is false until the frame has held a
// real page for the first time; the page table is never keyed by an
// unbound frame's zero-value PageID, since PageID(0) is itself a valid
// allocated id (spec.md §9, "Sentinel for empty frames").
type frame struct {
	buffer     Buffer
	bound      bool
	usageCount uint64
	pinCount   int
}

func (f *frame) isPinned() bool { return f.pinCount > 0 }

// Pool is the buffer pool manager: it bundles a disk manager, a fixed
// slice of frames, a page table, and the clock sweep's rolling cursor.
type Pool struct {
	disk      *disk.Manager
	frames    []*frame
	pageTable map[disk.PageID]BufferID
	sweep     *clockSweep

	hits, misses uint64
}

// NewBufferPoolManager constructs a buffer pool of poolSize frames
// backed by dm. poolSize must be at least 1.
func NewBufferPoolManager(dm *disk.Manager, poolSize int) (*Pool, error) {
	if poolSize < 1 {
		return nil, fmt.Errorf("bufferpool: pool size must be >= 1, got %d", poolSize)
	}

	frames := make([]*frame, poolSize)
	for i := range frames {
		frames[i] = &frame{}
	}

	return &Pool{
		disk:      dm,
		frames:    frames,
		pageTable: make(map[disk.PageID]BufferID),
		sweep:     newClockSweep(poolSize),
	}, nil
}

// Size returns the number of frames the pool manages.
func (p *Pool) Size() int { return len(p.frames) }

// frameProbe implementation, used by clockSweep.

func (p *Pool) usageCount(id BufferID) uint64 { return p.frames[id].usageCount }
func (p *Pool) decrementUsage(id BufferID)    { p.frames[id].usageCount-- }
func (p *Pool) isPinned(id BufferID) bool     { return p.frames[id].isPinned() }

// FetchPage returns a handle to the buffer currently holding pageID,
// loading it from disk on a miss. See spec.md §4.2.2.
func (p *Pool) FetchPage(pageID disk.PageID) (*Handle, error) {
	if bid, ok := p.pageTable[pageID]; ok {
		f := p.frames[bid]
		f.usageCount++
		f.pinCount++
		p.hits++
		slog.Debug("bufferpool: fetch hit", "pageID", pageID, "frame", bid, "usageCount", f.usageCount)
		return &Handle{pool: p, id: bid}, nil
	}

	p.misses++
	bid, ok := p.sweep.evict(p)
	if !ok {
		return nil, ErrNoFreeBuffer
	}

	f := p.frames[bid]
	evictedPageID := f.buffer.PageID
	wasBound := f.bound

	if wasBound && f.buffer.Dirty {
		if err := p.disk.WritePageData(evictedPageID, f.buffer.Page[:]); err != nil {
			return nil, fmt.Errorf("bufferpool: write back evicted page %d: %w", evictedPageID, err)
		}
	}

	f.buffer.PageID = pageID
	f.buffer.Dirty = false
	if err := p.disk.ReadPageData(pageID, f.buffer.Page[:]); err != nil {
		return nil, fmt.Errorf("bufferpool: read page %d: %w", pageID, err)
	}
	f.bound = true
	f.usageCount = 1
	f.pinCount = 1

	if wasBound {
		delete(p.pageTable, evictedPageID)
	}
	p.pageTable[pageID] = bid

	slog.Debug("bufferpool: fetch miss", "pageID", pageID, "frame", bid, "evicted", evictedPageID)
	return &Handle{pool: p, id: bid}, nil
}

// CreatePage allocates a fresh page id and returns a handle to an
// initially-zero buffer bound to it. The buffer is marked dirty so that
// even an unmodified empty page is persisted at eviction, reserving the
// file extent for the new id (spec.md §4.2.3).
func (p *Pool) CreatePage() (*Handle, error) {
	bid, ok := p.sweep.evict(p)
	if !ok {
		return nil, ErrNoFreeBuffer
	}

	f := p.frames[bid]
	evictedPageID := f.buffer.PageID
	wasBound := f.bound

	if wasBound && f.buffer.Dirty {
		if err := p.disk.WritePageData(evictedPageID, f.buffer.Page[:]); err != nil {
			return nil, fmt.Errorf("bufferpool: write back evicted page %d: %w", evictedPageID, err)
		}
	}

	pageID := p.disk.AllocatePage()

	f.buffer = Buffer{PageID: pageID, Dirty: true}
	f.bound = true
	f.usageCount = 1
	f.pinCount = 1

	if wasBound {
		delete(p.pageTable, evictedPageID)
	}
	p.pageTable[pageID] = bid

	slog.Debug("bufferpool: create page", "pageID", pageID, "frame", bid, "evicted", evictedPageID)
	return &Handle{pool: p, id: bid}, nil
}

// FlushPage writes pageID's buffer to disk if it is resident and dirty,
// without evicting it. It is a no-op (returns nil) if pageID is not
// currently in the pool.
func (p *Pool) FlushPage(pageID disk.PageID) error {
	bid, ok := p.pageTable[pageID]
	if !ok {
		return nil
	}

	f := p.frames[bid]
	if !f.buffer.Dirty {
		return nil
	}

	if err := p.disk.WritePageData(pageID, f.buffer.Page[:]); err != nil {
		return fmt.Errorf("bufferpool: flush page %d: %w", pageID, err)
	}
	f.buffer.Dirty = false
	return nil
}

// FlushAll writes every dirty resident frame to disk, without evicting
// any of them.
func (p *Pool) FlushAll() error {
	for pageID := range p.pageTable {
		if err := p.FlushPage(pageID); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports a snapshot of the pool's current occupancy and access
// counters, for diagnostics (grounded on the PoolStats shape in
// duber000-kuzu's phase1/buffer-pool exercise).
type Stats struct {
	TotalFrames  int
	BoundFrames  int
	PinnedFrames int
	DirtyFrames  int
	Hits         uint64
	Misses       uint64
}

// Stats returns a snapshot of the pool's current state.
func (p *Pool) Stats() Stats {
	s := Stats{TotalFrames: len(p.frames), Hits: p.hits, Misses: p.misses}
	for _, f := range p.frames {
		if !f.bound {
			continue
		}
		s.BoundFrames++
		if f.isPinned() {
			s.PinnedFrames++
		}
		if f.buffer.Dirty {
			s.DirtyFrames++
		}
	}
	return s
}

// release decrements the pin count for bid. Called by Handle.Release.
func (p *Pool) release(bid BufferID) {
	f := p.frames[bid]
	if f.pinCount > 0 {
		f.pinCount--
	}
}
