package lruk

import (
	"fmt"
	"log/slog"
	"sync"
)

// Replacer implements LRU-K replacement for a fixed range of frame ids.
//
// Frames with fewer than k recorded accesses live in the young tier and have
// an infinite backward k-distance, so they are always evicted before frames
// in the old tier. Young frames are ordered by last access (LRU), old frames
// by their k-th most recent access. Time is a logical counter advanced once
// per RecordAccess.
//
// All methods are safe for concurrent use.
type Replacer struct {
	mu sync.Mutex

	capacity  int
	k         int
	now       uint64
	evictable int

	arena *arena
	young *tier
	old   *tier

	logger *slog.Logger
}

// Stats is a point-in-time view of the replacer's tiers.
type Stats struct {
	Young     int `json:"young"`
	Old       int `json:"old"`
	Evictable int `json:"evictable"`
	Tracked   int `json:"tracked"`
}

type Option func(*Replacer)

// WithLogger sets the logger used for debug events. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Replacer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a replacer tracking frame ids [0, capacity) with history depth k.
func New(capacity, k int, opts ...Option) (*Replacer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}

	a := newArena(capacity)
	r := &Replacer{
		capacity: capacity,
		k:        k,
		arena:    a,
		young:    newTier(young, a, capacity),
		old:      newTier(old, a, capacity),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNew is like New but panics on invalid parameters.
func MustNew(capacity, k int, opts ...Option) *Replacer {
	r, err := New(capacity, k, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Replacer) Capacity() int { return r.capacity }

func (r *Replacer) K() int { return r.k }

// RecordAccess notes that the frame was touched at the next logical timestamp.
// An unseen frame starts tracking as non-evictable. The access type is
// accepted but does not influence the policy.
func (r *Replacer) RecordAccess(id FrameID, _ AccessType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkID(id); err != nil {
		return err
	}

	r.now++
	ts := r.now

	if slot, ok := r.young.find(id); ok {
		f := r.arena.at(slot)
		f.hist.push(ts)
		if f.hist.len() < r.k {
			r.young.moveToBack(slot)
			return nil
		}
		r.young.remove(slot)
		r.old.insertByOldest(slot)
		r.logger.Debug("lruk: frame promoted", "frame", id, "ts", ts)
		return nil
	}

	if slot, ok := r.old.find(id); ok {
		r.arena.at(slot).hist.push(ts)
		r.old.insertByOldest(slot)
		return nil
	}

	slot := r.arena.alloc(id, r.k, ts)
	if r.k == 1 {
		// A single access already fills the history.
		r.old.insertByOldest(slot)
		return nil
	}
	r.young.pushBack(slot)
	return nil
}

// SetEvictable marks a tracked frame as (un)pinned. Untracked frames are ignored.
func (r *Replacer) SetEvictable(id FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkID(id); err != nil {
		return err
	}

	slot, _, ok := r.lookup(id)
	if !ok {
		return nil
	}
	f := r.arena.at(slot)
	if f.evictable == evictable {
		return nil
	}

	f.evictable = evictable
	if evictable {
		r.evictable++
	} else {
		r.evictable--
	}
	return nil
}

// Evict picks the evictable frame with the largest backward k-distance and
// stops tracking it. ok is false when no frame is evictable.
func (r *Replacer) Evict() (id FrameID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.young
	slot, found := t.firstEvictable()
	if !found {
		t = r.old
		slot, found = t.firstEvictable()
	}
	if !found {
		return InvalidFrameID, false
	}

	id = r.arena.at(slot).id
	r.drop(t, slot)
	r.logger.Debug("lruk: frame evicted", "frame", id, "tier", t.kind.String())
	return id, true
}

// Remove forgets a frame regardless of its k-distance, e.g. when its page is
// deleted. Removing an untracked frame is a no-op; removing a pinned one fails
// and leaves the replacer unchanged.
func (r *Replacer) Remove(id FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkID(id); err != nil {
		return err
	}

	slot, t, ok := r.lookup(id)
	if !ok {
		return nil
	}
	if !r.arena.at(slot).evictable {
		return fmt.Errorf("%w: frame %d", ErrRemovePinnedFrame, id)
	}
	r.drop(t, slot)
	return nil
}

// Size returns the number of evictable frames.
func (r *Replacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictable
}

// Tracked returns the number of frames in either tier.
func (r *Replacer) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.young.len() + r.old.len()
}

func (r *Replacer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Young:     r.young.len(),
		Old:       r.old.len(),
		Evictable: r.evictable,
		Tracked:   r.young.len() + r.old.len(),
	}
}

// History returns the frame's access timestamps, newest first.
func (r *Replacer) History(id FrameID) ([]uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, _, ok := r.lookup(id)
	if !ok {
		return nil, false
	}
	return r.arena.at(slot).hist.snapshot(), true
}

func (r *Replacer) checkID(id FrameID) error {
	if id < 0 || int(id) >= r.capacity {
		return invalidFrameError(id, r.capacity)
	}
	return nil
}

func (r *Replacer) lookup(id FrameID) (int, *tier, bool) {
	if slot, ok := r.young.find(id); ok {
		return slot, r.young, true
	}
	if slot, ok := r.old.find(id); ok {
		return slot, r.old, true
	}
	return nilSlot, nil, false
}

// drop removes an evictable frame from t and releases its slot. Callers hold mu.
func (r *Replacer) drop(t *tier, slot int) {
	t.remove(slot)
	r.arena.release(slot)
	r.evictable--
}
