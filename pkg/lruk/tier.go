package lruk

// tier is an ordered set of frames for one aging class. Members are arena
// slots linked through frame.prev/next; head is the first eviction candidate.
// A tier knows nothing about its sibling: moving frames between tiers is the
// replacer's job.
type tier struct {
	kind  tierKind
	a     *arena
	index map[FrameID]int
	head  int
	tail  int
}

func newTier(kind tierKind, a *arena, capacity int) *tier {
	return &tier{
		kind:  kind,
		a:     a,
		index: make(map[FrameID]int, capacity),
		head:  nilSlot,
		tail:  nilSlot,
	}
}

func (t *tier) len() int { return len(t.index) }

func (t *tier) find(id FrameID) (int, bool) {
	slot, ok := t.index[id]
	return slot, ok
}

// pushBack adds a frame that is not yet a member at the tail.
func (t *tier) pushBack(slot int) {
	f := t.a.at(slot)
	f.tier = t.kind
	t.index[f.id] = slot
	t.linkAfter(slot, t.tail)
}

// remove detaches the frame from the order and the index.
func (t *tier) remove(slot int) {
	t.unlink(slot)
	delete(t.index, t.a.at(slot).id)
}

// moveToBack re-appends a member at the tail.
func (t *tier) moveToBack(slot int) {
	if t.tail == slot {
		return
	}
	t.unlink(slot)
	t.linkAfter(slot, t.tail)
}

// insertByOldest places the frame so the tier stays sorted by the oldest
// retained timestamp, ascending from head to tail. The frame may or may not
// be a member already. The walk starts at the tail because a frame that was
// just touched nearly always belongs there; equal keys keep call order.
func (t *tier) insertByOldest(slot int) {
	f := t.a.at(slot)
	if _, ok := t.index[f.id]; ok {
		t.unlink(slot)
	} else {
		f.tier = t.kind
		t.index[f.id] = slot
	}

	key := f.hist.oldest()
	after := t.tail
	for after != nilSlot && t.a.at(after).hist.oldest() > key {
		after = t.a.at(after).prev
	}
	t.linkAfter(slot, after)
}

// firstEvictable scans head to tail.
func (t *tier) firstEvictable() (int, bool) {
	for cur := t.head; cur != nilSlot; cur = t.a.at(cur).next {
		if t.a.at(cur).evictable {
			return cur, true
		}
	}
	return nilSlot, false
}

// ids lists members head to tail.
func (t *tier) ids() []FrameID {
	out := make([]FrameID, 0, t.len())
	for cur := t.head; cur != nilSlot; cur = t.a.at(cur).next {
		out = append(out, t.a.at(cur).id)
	}
	return out
}

// linkAfter links a detached slot after prev, or at the head when prev is nilSlot.
func (t *tier) linkAfter(slot, prev int) {
	f := t.a.at(slot)
	f.prev = prev
	if prev == nilSlot {
		f.next = t.head
		t.head = slot
	} else {
		p := t.a.at(prev)
		f.next = p.next
		p.next = slot
	}
	if f.next == nilSlot {
		t.tail = slot
	} else {
		t.a.at(f.next).prev = slot
	}
}

func (t *tier) unlink(slot int) {
	f := t.a.at(slot)
	if f.prev == nilSlot {
		t.head = f.next
	} else {
		t.a.at(f.prev).next = f.next
	}
	if f.next == nilSlot {
		t.tail = f.prev
	} else {
		t.a.at(f.next).prev = f.prev
	}
	f.prev, f.next = nilSlot, nilSlot
}
