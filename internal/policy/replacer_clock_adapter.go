package policy

import (
	"errors"
	"fmt"

	"github.com/tuannm99/lruk/pkg/clockx"
	"github.com/tuannm99/lruk/pkg/lruk"
)

// clockAdapter exposes clockx.Clock as a Replacer, mapping its errors onto
// the lruk sentinels so callers handle both policies alike.
type clockAdapter struct {
	c *clockx.Clock
}

func newClockAdapter(capacity int) Replacer {
	return &clockAdapter{c: clockx.New(capacity)}
}

func (a *clockAdapter) RecordAccess(frameID lruk.FrameID, _ lruk.AccessType) error {
	return mapClockErr(a.c.Touch(int(frameID)))
}

func (a *clockAdapter) SetEvictable(frameID lruk.FrameID, e bool) error {
	return mapClockErr(a.c.SetEvictable(int(frameID), e))
}

func (a *clockAdapter) Evict() (lruk.FrameID, bool) {
	id, ok := a.c.Evict()
	if !ok {
		return lruk.InvalidFrameID, false
	}
	return lruk.FrameID(id), true
}

func (a *clockAdapter) Remove(frameID lruk.FrameID) error {
	return mapClockErr(a.c.Remove(int(frameID)))
}

func (a *clockAdapter) Size() int {
	return a.c.Size()
}

// Stats reports every tracked slot as old: CLOCK has no aging tiers.
func (a *clockAdapter) Stats() lruk.Stats {
	tracked := a.c.Tracked()
	return lruk.Stats{
		Old:       tracked,
		Evictable: a.c.Size(),
		Tracked:   tracked,
	}
}

func mapClockErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, clockx.ErrInvalidSlot):
		return fmt.Errorf("%w: %w", lruk.ErrInvalidFrameID, err)
	case errors.Is(err, clockx.ErrSlotPinned):
		return fmt.Errorf("%w: %w", lruk.ErrRemovePinnedFrame, err)
	}
	return err
}
