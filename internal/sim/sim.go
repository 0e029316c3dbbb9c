package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/tuannm99/lruk/internal/policy"
	"github.com/tuannm99/lruk/internal/trace"
	"github.com/tuannm99/lruk/pkg/lruk"
)

var ErrNoFreeFrame = errors.New("sim: no free frame available (all pinned)")

// Source yields accesses until io.EOF. *trace.Reader satisfies it.
type Source interface {
	Next() (trace.Access, error)
}

type Result struct {
	Policy    string `json:"policy"`
	Accesses  uint64 `json:"accesses"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

func (r Result) HitRatio() float64 {
	if r.Accesses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Accesses)
}

func (r Result) String() string {
	return fmt.Sprintf("%s: accesses=%d hits=%d misses=%d evictions=%d hit_ratio=%.4f",
		r.Policy, r.Accesses, r.Hits, r.Misses, r.Evictions, r.HitRatio())
}

// Simulator plays the buffer pool role against a Replacer without page data:
// it maps pages to frames, pins a frame while the page is in use and asks the
// replacer for a victim when no frame is free.
type Simulator struct {
	name  string
	repl  policy.Replacer
	table map[uint64]lruk.FrameID // page -> frame
	owner []uint64                // frame -> page
	free  []lruk.FrameID
	pins  []int

	// The last pinWindow accessed frames stay pinned.
	pinWindow int
	pinned    []lruk.FrameID

	res Result
}

type Option func(*Simulator)

// WithPinWindow keeps the n most recently accessed frames pinned.
func WithPinWindow(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.pinWindow = n
		}
	}
}

func New(name string, repl policy.Replacer, frames int, opts ...Option) *Simulator {
	s := &Simulator{
		name:  name,
		repl:  repl,
		table: make(map[uint64]lruk.FrameID, frames),
		owner: make([]uint64, frames),
		free:  make([]lruk.FrameID, 0, frames),
		pins:  make([]int, frames),
		res:   Result{Policy: name},
	}
	for i := frames - 1; i >= 0; i-- {
		s.free = append(s.free, lruk.FrameID(i))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Result() Result { return s.res }

// Access touches a page, loading it into a frame on a miss.
func (s *Simulator) Access(a trace.Access) (hit bool, err error) {
	fid, hit := s.table[a.Page]
	if !hit {
		if fid, err = s.claimFrame(); err != nil {
			return false, err
		}
		s.table[a.Page] = fid
		s.owner[fid] = a.Page
	}

	if err := s.repl.RecordAccess(fid, a.Type); err != nil {
		return hit, err
	}
	if err := s.pin(fid); err != nil {
		return hit, err
	}
	if err := s.release(); err != nil {
		return hit, err
	}

	s.res.Accesses++
	if hit {
		s.res.Hits++
	} else {
		s.res.Misses++
	}
	return hit, nil
}

// Drop forgets a page, as when it is deleted. Pinned pages are refused.
func (s *Simulator) Drop(page uint64) error {
	fid, ok := s.table[page]
	if !ok {
		return nil
	}
	if err := s.repl.Remove(fid); err != nil {
		return err
	}
	delete(s.table, page)
	s.free = append(s.free, fid)
	return nil
}

func (s *Simulator) claimFrame() (lruk.FrameID, error) {
	if n := len(s.free); n > 0 {
		fid := s.free[n-1]
		s.free = s.free[:n-1]
		return fid, nil
	}

	victim, ok := s.repl.Evict()
	if !ok {
		return lruk.InvalidFrameID, ErrNoFreeFrame
	}
	if s.pins[victim] != 0 {
		return lruk.InvalidFrameID, fmt.Errorf("sim: replacer evicted pinned frame %d", victim)
	}
	delete(s.table, s.owner[victim])
	s.res.Evictions++
	return victim, nil
}

func (s *Simulator) pin(fid lruk.FrameID) error {
	s.pins[fid]++
	if s.pins[fid] == 1 {
		if err := s.repl.SetEvictable(fid, false); err != nil {
			return err
		}
	}
	s.pinned = append(s.pinned, fid)
	return nil
}

// release unpins frames that fell out of the pin window.
func (s *Simulator) release() error {
	for len(s.pinned) > s.pinWindow {
		fid := s.pinned[0]
		s.pinned = s.pinned[1:]
		s.pins[fid]--
		if s.pins[fid] == 0 {
			if err := s.repl.SetEvictable(fid, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// Baseline replays the same accesses through an ARC cache of equal size.
type Baseline struct {
	cache *arc.ARCCache[uint64, struct{}]
	size  int
	res   Result
}

func NewBaseline(frames int) (*Baseline, error) {
	c, err := arc.NewARC[uint64, struct{}](frames)
	if err != nil {
		return nil, fmt.Errorf("sim: arc baseline: %w", err)
	}
	return &Baseline{cache: c, size: frames, res: Result{Policy: "arc"}}, nil
}

func (b *Baseline) Access(a trace.Access) bool {
	b.res.Accesses++
	if _, ok := b.cache.Get(a.Page); ok {
		b.res.Hits++
		return true
	}
	b.res.Misses++
	if b.cache.Len() >= b.size {
		b.res.Evictions++
	}
	b.cache.Add(a.Page, struct{}{})
	return false
}

func (b *Baseline) Result() Result { return b.res }

// Run feeds src through sim (and baseline when non-nil) until EOF.
func Run(ctx context.Context, src Source, s *Simulator, baseline *Baseline) (Result, error) {
	for {
		if s.res.Accesses%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return s.res, err
			}
		}

		a, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.res, err
		}

		if _, err := s.Access(a); err != nil {
			return s.res, err
		}
		if baseline != nil {
			baseline.Access(a)
		}
	}

	slog.Info("sim: done", "policy", s.name, "accesses", s.res.Accesses, "hit_ratio", s.res.HitRatio())
	return s.res, nil
}
