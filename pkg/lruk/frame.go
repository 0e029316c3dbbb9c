package lruk

// FrameID identifies a buffer pool slot in [0, capacity).
type FrameID int

// InvalidFrameID is returned alongside ok == false by Evict.
const InvalidFrameID FrameID = -1

type tierKind uint8

const (
	young tierKind = iota
	old
)

func (t tierKind) String() string {
	if t == old {
		return "old"
	}
	return "young"
}

// history keeps the last k access timestamps of a frame in a fixed ring.
// ts[head] is the newest entry; the n-1 slots before it (mod k) hold older ones.
type history struct {
	ts   []uint64
	head int
	n    int
}

func (h *history) reset(k int, first uint64) {
	if cap(h.ts) >= k {
		h.ts = h.ts[:k]
	} else {
		h.ts = make([]uint64, k)
	}
	h.head = 0
	h.n = 1
	h.ts[0] = first
}

// push records ts as the newest access, overwriting the oldest one when full.
func (h *history) push(ts uint64) {
	h.head = (h.head + 1) % len(h.ts)
	h.ts[h.head] = ts
	if h.n < len(h.ts) {
		h.n++
	}
}

func (h *history) len() int { return h.n }

func (h *history) newest() uint64 { return h.ts[h.head] }

// oldest is the k-th most recent access once the ring is full.
func (h *history) oldest() uint64 {
	k := len(h.ts)
	return h.ts[(h.head-(h.n-1)+k)%k]
}

// snapshot returns the timestamps newest first.
func (h *history) snapshot() []uint64 {
	k := len(h.ts)
	out := make([]uint64, h.n)
	for i := range h.n {
		out[i] = h.ts[(h.head-i+k)%k]
	}
	return out
}

// frame is one tracked slot. prev and next are arena slots of the neighbours
// inside the frame's tier, nilSlot at either end.
type frame struct {
	id        FrameID
	hist      history
	evictable bool
	tier      tierKind
	prev      int
	next      int
}

const nilSlot = -1

// arena owns every frame record. Released slots are recycled so a replacer
// never holds more than capacity records.
type arena struct {
	frames []frame
	free   []int
}

func newArena(capacity int) *arena {
	return &arena{frames: make([]frame, 0, capacity)}
}

func (a *arena) alloc(id FrameID, k int, ts uint64) int {
	var slot int
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.frames = append(a.frames, frame{})
		slot = len(a.frames) - 1
	}

	f := &a.frames[slot]
	f.id = id
	f.hist.reset(k, ts)
	f.evictable = false
	f.tier = young
	f.prev, f.next = nilSlot, nilSlot
	return slot
}

func (a *arena) release(slot int) {
	f := &a.frames[slot]
	f.id = InvalidFrameID
	f.evictable = false
	f.prev, f.next = nilSlot, nilSlot
	a.free = append(a.free, slot)
}

func (a *arena) at(slot int) *frame { return &a.frames[slot] }
