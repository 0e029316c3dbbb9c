package policy

import (
	"fmt"

	"github.com/tuannm99/lruk/internal"
	"github.com/tuannm99/lruk/pkg/lruk"
)

var (
	ErrInvalidFrameID    = lruk.ErrInvalidFrameID
	ErrRemovePinnedFrame = lruk.ErrRemovePinnedFrame
)

// Replacer is what a buffer pool needs from a replacement policy. Frame ids
// are slot indices [0..capacity).
type Replacer interface {
	RecordAccess(frameID lruk.FrameID, at lruk.AccessType) error
	SetEvictable(frameID lruk.FrameID, evictable bool) error
	Evict() (frameID lruk.FrameID, ok bool)
	Remove(frameID lruk.FrameID) error
	Size() int
	Stats() lruk.Stats
}

var _ Replacer = (*lruk.Replacer)(nil)

// New builds the replacer selected by cfg.Policy.
func New(cfg internal.ReplacerConfig) (Replacer, error) {
	switch cfg.Policy {
	case internal.PolicyLRUK, "":
		r, err := lruk.New(cfg.Capacity, cfg.K)
		if err != nil {
			return nil, err
		}
		return r, nil
	case internal.PolicyClock:
		if cfg.Capacity <= 0 {
			return nil, fmt.Errorf("%w: %d", lruk.ErrInvalidCapacity, cfg.Capacity)
		}
		return newClockAdapter(cfg.Capacity), nil
	}
	return nil, fmt.Errorf("policy: unknown replacement policy %q", cfg.Policy)
}
