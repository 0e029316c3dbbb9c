package policy

import (
	"errors"
	"log/slog"

	"github.com/tuannm99/lruk/internal/metrics"
	"github.com/tuannm99/lruk/pkg/lruk"
)

// Instrumented wraps a Replacer, exporting prometheus metrics under the given
// policy label and logging rejected calls.
type Instrumented struct {
	Replacer
	name string
}

func Instrument(r Replacer, name string) *Instrumented {
	return &Instrumented{Replacer: r, name: name}
}

func (i *Instrumented) RecordAccess(frameID lruk.FrameID, at lruk.AccessType) error {
	if err := i.Replacer.RecordAccess(frameID, at); err != nil {
		slog.Warn("policy: record access rejected", "policy", i.name, "frame", frameID, "err", err)
		return err
	}
	metrics.IncAccess(i.name)
	i.observe()
	return nil
}

func (i *Instrumented) SetEvictable(frameID lruk.FrameID, evictable bool) error {
	if err := i.Replacer.SetEvictable(frameID, evictable); err != nil {
		slog.Warn("policy: set evictable rejected", "policy", i.name, "frame", frameID, "err", err)
		return err
	}
	i.observe()
	return nil
}

func (i *Instrumented) Evict() (lruk.FrameID, bool) {
	id, ok := i.Replacer.Evict()
	if !ok {
		metrics.IncEvictMiss(i.name)
		slog.Debug("policy: nothing to evict", "policy", i.name)
		return id, false
	}
	metrics.IncEviction(i.name)
	i.observe()
	return id, true
}

func (i *Instrumented) Remove(frameID lruk.FrameID) error {
	err := i.Replacer.Remove(frameID)
	if errors.Is(err, lruk.ErrRemovePinnedFrame) {
		metrics.IncPinnedRemoval(i.name)
	}
	if err != nil {
		slog.Warn("policy: remove rejected", "policy", i.name, "frame", frameID, "err", err)
		return err
	}
	i.observe()
	return nil
}

func (i *Instrumented) observe() {
	s := i.Replacer.Stats()
	metrics.SetOccupancy(i.name, s.Evictable, s.Young, s.Old)
}
