package bufferpool

// clockSweep implements the generalized-clock replacement policy
// described in spec.md §4.2.1: it sweeps frame ids starting from a
// rolling hand, and picks the first frame whose usage count has decayed
// to zero. It is adapted from the teacher's pkg/clockx.Clock, which
// tracks a single boolean "ref" bit per slot (second-chance CLOCK);
// this variant instead counts down a usage_count per frame, and leaves
// pin/unpin bookkeeping to the caller's frameProbe rather than folding
// it into the replacer's own evictable bitset, matching the ownership
// check in original_source/src/buffer.rs (BufferPool::evict) instead of
// the teacher's pin-count-in-the-replacer design.
type clockSweep struct {
	capacity int
	hand     BufferID
}

// frameProbe is the narrow view of frame state the sweep needs. Pool
// implements it directly against its own frame slice.
type frameProbe interface {
	usageCount(id BufferID) uint64
	decrementUsage(id BufferID)
	isPinned(id BufferID) bool
}

func newClockSweep(capacity int) *clockSweep {
	return &clockSweep{capacity: capacity}
}

// evict walks the ring starting at the current hand and returns the
// first eligible victim. A frame with usage_count == 0 is an immediate
// victim and the hand is left pointing at it, so the next sweep starts
// there again (spec.md §4.2.1, rule 1). Pinned frames advance a
// consecutive-pinned counter; if it reaches capacity (a full lap with
// no unpinned frame encountered), evict reports no victim.
func (s *clockSweep) evict(probe frameProbe) (BufferID, bool) {
	if s.capacity == 0 {
		return 0, false
	}

	consecutivePinned := 0
	for {
		id := s.hand

		if probe.usageCount(id) == 0 {
			return id, true
		}

		if probe.isPinned(id) {
			consecutivePinned++
			if consecutivePinned >= s.capacity {
				return 0, false
			}
		} else {
			probe.decrementUsage(id)
			consecutivePinned = 0
		}

		s.hand = (s.hand + 1) % BufferID(s.capacity)
	}
}
