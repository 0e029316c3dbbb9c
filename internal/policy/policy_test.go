package policy

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/lruk/internal"
	"github.com/tuannm99/lruk/internal/metrics"
	"github.com/tuannm99/lruk/pkg/lruk"
)

func TestNew_SelectsPolicy(t *testing.T) {
	r, err := New(internal.ReplacerConfig{Policy: internal.PolicyLRUK, Capacity: 4, K: 2})
	require.NoError(t, err)
	require.IsType(t, &lruk.Replacer{}, r)

	r, err = New(internal.ReplacerConfig{Policy: internal.PolicyClock, Capacity: 4})
	require.NoError(t, err)
	require.IsType(t, &clockAdapter{}, r)

	_, err = New(internal.ReplacerConfig{Policy: "fifo", Capacity: 4, K: 2})
	require.Error(t, err)

	_, err = New(internal.ReplacerConfig{Policy: internal.PolicyLRUK, Capacity: 0, K: 2})
	require.ErrorIs(t, err, lruk.ErrInvalidCapacity)

	_, err = New(internal.ReplacerConfig{Policy: internal.PolicyClock, Capacity: -3})
	require.ErrorIs(t, err, lruk.ErrInvalidCapacity)
}

// Both policies honour the same contract for the operations a pool relies on.
func TestReplacer_SharedContract(t *testing.T) {
	for _, name := range []string{internal.PolicyLRUK, internal.PolicyClock} {
		t.Run(name, func(t *testing.T) {
			r, err := New(internal.ReplacerConfig{Policy: name, Capacity: 3, K: 2})
			require.NoError(t, err)

			require.ErrorIs(t, r.RecordAccess(3, lruk.AccessLookup), ErrInvalidFrameID)
			require.ErrorIs(t, r.SetEvictable(-1, true), ErrInvalidFrameID)
			require.ErrorIs(t, r.Remove(7), ErrInvalidFrameID)

			require.NoError(t, r.SetEvictable(0, true))
			require.NoError(t, r.Remove(0))
			require.Equal(t, 0, r.Size())

			require.NoError(t, r.RecordAccess(0, lruk.AccessLookup))
			require.NoError(t, r.RecordAccess(1, lruk.AccessScan))
			require.Equal(t, 0, r.Size())
			require.Equal(t, 2, r.Stats().Tracked)

			_, ok := r.Evict()
			require.False(t, ok)

			require.ErrorIs(t, r.Remove(1), ErrRemovePinnedFrame)

			require.NoError(t, r.SetEvictable(0, true))
			require.NoError(t, r.SetEvictable(1, true))
			require.Equal(t, 2, r.Size())

			v, ok := r.Evict()
			require.True(t, ok)
			require.Equal(t, lruk.FrameID(0), v)
			require.Equal(t, 1, r.Size())

			require.NoError(t, r.Remove(1))
			require.Equal(t, 0, r.Size())
			require.Equal(t, 0, r.Stats().Tracked)
		})
	}
}

func TestInstrumented_Metrics(t *testing.T) {
	const name = "instrumented-test"
	inner, err := New(internal.ReplacerConfig{Policy: internal.PolicyLRUK, Capacity: 4, K: 2})
	require.NoError(t, err)
	r := Instrument(inner, name)

	require.NoError(t, r.RecordAccess(0, lruk.AccessLookup))
	require.NoError(t, r.RecordAccess(1, lruk.AccessLookup))
	require.NoError(t, r.RecordAccess(1, lruk.AccessLookup))
	require.Equal(t, 3.0, testutil.ToFloat64(metrics.Accesses.WithLabelValues(name)))

	require.ErrorIs(t, r.RecordAccess(9, lruk.AccessLookup), ErrInvalidFrameID)
	require.Equal(t, 3.0, testutil.ToFloat64(metrics.Accesses.WithLabelValues(name)))

	require.ErrorIs(t, r.Remove(0), ErrRemovePinnedFrame)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.PinnedRemovals.WithLabelValues(name)))

	_, ok := r.Evict()
	require.False(t, ok)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.EvictMisses.WithLabelValues(name)))

	require.NoError(t, r.SetEvictable(0, true))
	require.NoError(t, r.SetEvictable(1, true))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.Evictable.WithLabelValues(name)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Tracked.WithLabelValues(name, "old")))

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, lruk.FrameID(0), v)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Evictions.WithLabelValues(name)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Evictable.WithLabelValues(name)))
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.Tracked.WithLabelValues(name, "young")))
}
