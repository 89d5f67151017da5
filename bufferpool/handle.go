package bufferpool

import "github.com/relaydb/pagecache/disk"

// Handle is a shared reference to a resident Buffer, returned by
// FetchPage and CreatePage. While any Handle for a frame is
// outstanding, the frame is pinned: the pool guarantees its bytes and
// PageID will not be mutated or evicted (spec.md §4.2.4, I4).
//
// Go has no equivalent to the Rust source's Rc<Buffer>/exclusive-access
// check, so pinning is tracked with an explicit counter on the frame
// (incremented by FetchPage/CreatePage as they hand out a Handle,
// decremented by Release) rather
// than derived from reference ownership — the adaptation spec.md §9
// recommends for languages without refcount introspection.
//
// A Handle is not safe for concurrent use from multiple goroutines;
// the pool assumes a single cooperative caller (spec.md §5).
type Handle struct {
	pool     *Pool
	id       BufferID
	released bool
}

// PageID returns the id of the page this handle refers to.
func (h *Handle) PageID() disk.PageID {
	return h.pool.frames[h.id].buffer.PageID
}

// Page returns a mutable view of the page's bytes. The caller must call
// SetDirty after modifying them if it wants the change to survive
// eviction.
func (h *Handle) Page() *[disk.PageSize]byte {
	return &h.pool.frames[h.id].buffer.Page
}

// SetDirty marks the buffer as modified, so it will be written back to
// disk before its frame is reused.
func (h *Handle) SetDirty() {
	h.pool.frames[h.id].buffer.Dirty = true
}

// IsDirty reports whether the buffer is currently marked modified.
func (h *Handle) IsDirty() bool {
	return h.pool.frames[h.id].buffer.Dirty
}

// Release drops this handle's pin on the frame. It is idempotent:
// releasing an already-released handle is a no-op. Once every handle to
// a frame has been released, it becomes eligible for eviction again.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.pool.release(h.id)
}
