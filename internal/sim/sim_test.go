package sim

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/lruk/internal"
	"github.com/tuannm99/lruk/internal/policy"
	"github.com/tuannm99/lruk/internal/trace"
	"github.com/tuannm99/lruk/pkg/lruk"
)

func newTestSim(t *testing.T, policyName string, frames, k int, opts ...Option) *Simulator {
	t.Helper()
	repl, err := policy.New(internal.ReplacerConfig{Policy: policyName, Capacity: frames, K: k})
	require.NoError(t, err)
	return New(policyName, repl, frames, opts...)
}

func pages(ids ...uint64) []trace.Access {
	out := make([]trace.Access, len(ids))
	for i, id := range ids {
		out[i] = trace.Access{Page: id}
	}
	return out
}

type sliceSource struct {
	items []trace.Access
}

func (s *sliceSource) Next() (trace.Access, error) {
	if len(s.items) == 0 {
		return trace.Access{}, io.EOF
	}
	a := s.items[0]
	s.items = s.items[1:]
	return a, nil
}

func TestSimulator_HitsAndMisses(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 2, 2)

	seq := pages(1, 2, 1, 2)
	for i, want := range []bool{false, false, true, true} {
		hit, err := s.Access(seq[i])
		require.NoError(t, err)
		require.Equal(t, want, hit)
	}

	res := s.Result()
	require.Equal(t, uint64(4), res.Accesses)
	require.Equal(t, uint64(2), res.Hits)
	require.Equal(t, uint64(2), res.Misses)
	require.Equal(t, uint64(0), res.Evictions)
	require.InDelta(t, 0.5, res.HitRatio(), 1e-9)
}

// With k=2 a page seen twice survives a one-off scan that would flush it under LRU.
func TestSimulator_LRUKResistsScan(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 3, 2)

	seq := pages(1, 1, 2, 3, 4, 5, 1)
	for _, a := range seq[:len(seq)-1] {
		_, err := s.Access(a)
		require.NoError(t, err)
	}
	hit, err := s.Access(seq[len(seq)-1])
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, uint64(2), s.Result().Evictions)
}

func TestSimulator_AllPinned(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 2, 2, WithPinWindow(2))

	_, err := s.Access(trace.Access{Page: 1})
	require.NoError(t, err)
	_, err = s.Access(trace.Access{Page: 2})
	require.NoError(t, err)

	_, err = s.Access(trace.Access{Page: 3})
	require.ErrorIs(t, err, ErrNoFreeFrame)
}

func TestSimulator_PinWindowReleases(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 2, 2, WithPinWindow(1))

	for _, a := range pages(1, 2, 3, 4) {
		_, err := s.Access(a)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(2), s.Result().Evictions)
}

func TestSimulator_Drop(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 2, 2, WithPinWindow(1))

	_, err := s.Access(trace.Access{Page: 1})
	require.NoError(t, err)

	// Still inside the pin window.
	require.ErrorIs(t, s.Drop(1), lruk.ErrRemovePinnedFrame)

	_, err = s.Access(trace.Access{Page: 2})
	require.NoError(t, err)
	require.NoError(t, s.Drop(1))
	require.NoError(t, s.Drop(99))

	hit, err := s.Access(trace.Access{Page: 1})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, uint64(0), s.Result().Evictions)
}

func TestRun_WithBaseline(t *testing.T) {
	in := "1\n2\n1 lookup\n3 scan\n1\n# done\n"

	for _, name := range []string{internal.PolicyLRUK, internal.PolicyClock} {
		t.Run(name, func(t *testing.T) {
			src, err := trace.NewReader(strings.NewReader(in), trace.CompressionNone)
			require.NoError(t, err)

			s := newTestSim(t, name, 2, 2)
			b, err := NewBaseline(2)
			require.NoError(t, err)

			res, err := Run(context.Background(), src, s, b)
			require.NoError(t, err)
			require.Equal(t, uint64(5), res.Accesses)
			require.Equal(t, uint64(5), b.Result().Accesses)
			require.Equal(t, res.Hits+res.Misses, res.Accesses)
			require.Equal(t, "arc", b.Result().Policy)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSim(t, internal.PolicyLRUK, 2, 2)
	_, err := Run(ctx, &sliceSource{items: pages(1, 2, 3)}, s, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_SliceSource(t *testing.T) {
	s := newTestSim(t, internal.PolicyLRUK, 2, 2)
	res, err := Run(context.Background(), &sliceSource{items: pages(1, 2, 3, 1)}, s, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(4), res.Accesses)
	require.Equal(t, uint64(2), res.Evictions)
}

func TestBaseline_CountsHits(t *testing.T) {
	b, err := NewBaseline(2)
	require.NoError(t, err)

	require.False(t, b.Access(trace.Access{Page: 1}))
	require.True(t, b.Access(trace.Access{Page: 1}))
	require.False(t, b.Access(trace.Access{Page: 2}))
	require.False(t, b.Access(trace.Access{Page: 3}))

	res := b.Result()
	require.Equal(t, uint64(4), res.Accesses)
	require.Equal(t, uint64(1), res.Hits)
	require.Equal(t, uint64(1), res.Evictions)
}
