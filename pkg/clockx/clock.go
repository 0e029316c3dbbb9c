package clockx

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidSlot = errors.New("clockx: slot out of range")
	ErrSlotPinned  = errors.New("clockx: slot is pinned")
)

// Clock implements CLOCK (second-chance) replacement for a fixed number of slots.
// It tracks ref bits and evictable state for slot IDs [0..capacity).
// All methods are safe for concurrent use.
type Clock struct {
	mu        sync.Mutex
	ref       []bool
	evictable []bool
	present   []bool
	hand      int
	size      int // number of evictable slots
	tracked   int
}

func New(capacity int) *Clock {
	if capacity <= 0 {
		capacity = 1
	}
	return &Clock{
		ref:       make([]bool, capacity),
		evictable: make([]bool, capacity),
		present:   make([]bool, capacity),
	}
}

func (c *Clock) Capacity() int { return len(c.ref) }

func (c *Clock) check(id int) error {
	if id < 0 || id >= len(c.ref) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSlot, id, len(c.ref))
	}
	return nil
}

// Touch marks slot as recently accessed. A slot seen for the first time
// starts out non-evictable.
func (c *Clock) Touch(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(id); err != nil {
		return err
	}
	if !c.present[id] {
		c.present[id] = true
		c.tracked++
	}
	c.ref[id] = true
	return nil
}

// SetEvictable marks whether slot can be evicted (e.g., pin==0).
// Unknown slots are ignored.
func (c *Clock) SetEvictable(id int, evictable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(id); err != nil {
		return err
	}
	if !c.present[id] || c.evictable[id] == evictable {
		return nil
	}

	c.evictable[id] = evictable
	if evictable {
		c.size++
	} else {
		c.size--
	}
	return nil
}

// Evict returns victim slot id and ok flag.
// It also removes the victim from tracking (present=false).
func (c *Clock) Evict() (id int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.ref)
	if c.size == 0 {
		return -1, false
	}

	// The first sweep may only clear ref bits; the second is guaranteed a victim.
	for range 2 * n {
		idx := c.hand
		c.hand = (c.hand + 1) % n

		if !c.present[idx] || !c.evictable[idx] {
			continue
		}
		if c.ref[idx] {
			c.ref[idx] = false
			continue
		}
		c.forget(idx)
		return idx, true
	}
	return -1, false
}

// Remove drops slot from tracking. Unknown slots are ignored; pinned ones are refused.
func (c *Clock) Remove(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(id); err != nil {
		return err
	}
	if !c.present[id] {
		return nil
	}
	if !c.evictable[id] {
		return fmt.Errorf("%w: %d", ErrSlotPinned, id)
	}
	c.forget(id)
	return nil
}

func (c *Clock) forget(id int) {
	if c.evictable[id] {
		c.size--
	}
	c.present[id] = false
	c.evictable[id] = false
	c.ref[id] = false
	c.tracked--
}

// Size returns the number of evictable slots.
func (c *Clock) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Tracked returns the number of present slots.
func (c *Clock) Tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracked
}
