package resource

const (
	indexBits = 32
	indexMask = 1<<indexBits - 1

	generationBits = 28
	generationMask = 1<<generationBits - 1

	// DefaultLimit is the number of live ids per type when no limit is
	// configured.
	DefaultLimit uint32 = 1 << 20
)

// An id packs a slot index and the slot's generation:
//
//	bits  0..31  slot index + 1 (never 0, so id 0 is never minted)
//	bits 32..59  generation, bumped every time the slot is freed
//
// A stale id of a reused slot carries an old generation and is rejected.
func makeID(index, generation uint32) uint64 {
	return uint64(generation&generationMask)<<indexBits | (uint64(index) + 1)
}

func splitID(id uint64) (index, generation uint32, ok bool) {
	low := uint32(id & indexMask)
	if low == 0 || id>>(indexBits+generationBits) != 0 {
		return 0, 0, false
	}
	return low - 1, uint32(id>>indexBits) & generationMask, true
}

type slot struct {
	value      any
	generation uint32
	live       bool
	pinned     bool
}

// space is the id space of one resource type. It is not synchronized;
// Table guards it.
type space struct {
	slots    []slot
	freeList []uint32
	stats    TypeStats
}

func newSpace(limit uint32) space {
	return space{
		slots:    make([]slot, 0, 16),
		freeList: make([]uint32, 0, 16),
		stats:    TypeStats{Limit: limit},
	}
}

func (s *space) alloc() (uint64, bool) {
	if s.stats.Live >= s.stats.Limit {
		s.stats.Exhausted++
		return 0, false
	}

	var index uint32
	if n := len(s.freeList); n > 0 {
		index = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
	} else {
		if uint64(len(s.slots)) >= indexMask {
			s.stats.Exhausted++
			return 0, false
		}
		s.slots = append(s.slots, slot{})
		index = uint32(len(s.slots) - 1)
	}

	sl := &s.slots[index]
	sl.live = true
	s.stats.Allocated++
	s.stats.Live++
	if s.stats.Live > s.stats.Peak {
		s.stats.Peak = s.stats.Live
	}
	return makeID(index, sl.generation), true
}

func (s *space) lookup(id uint64) (*slot, bool) {
	index, generation, ok := splitID(id)
	if !ok || int(index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[index]
	if !sl.live || sl.generation != generation {
		return nil, false
	}
	return sl, true
}

// release frees id and returns the slot as it was before clearing.
func (s *space) release(id uint64) (slot, bool) {
	sl, ok := s.lookup(id)
	if !ok {
		s.stats.Rejected++
		return slot{}, false
	}
	old := *sl
	index, _, _ := splitID(id)

	sl.value = nil
	sl.pinned = false
	sl.live = false
	sl.generation = (sl.generation + 1) & generationMask
	s.freeList = append(s.freeList, index)

	s.stats.Freed++
	s.stats.Live--
	return old, true
}

func (s *space) each(fn func(id uint64, sl *slot) bool) {
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.live {
			if !fn(makeID(uint32(i), sl.generation), sl) {
				return
			}
		}
	}
}
