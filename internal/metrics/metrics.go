package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Accesses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacer_accesses_total",
		Help: "Total number of recorded frame accesses by policy",
	}, []string{"policy"})

	Evictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacer_evictions_total",
		Help: "Total number of frames evicted by policy",
	}, []string{"policy"})

	EvictMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacer_evict_empty_total",
		Help: "Evict calls that found no evictable frame",
	}, []string{"policy"})

	PinnedRemovals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacer_pinned_remove_total",
		Help: "Remove calls rejected because the frame was pinned",
	}, []string{"policy"})

	Evictable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replacer_evictable_frames",
		Help: "Number of evictable frames by policy",
	}, []string{"policy"})

	Tracked = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "replacer_tracked_frames",
		Help: "Number of tracked frames by policy and tier",
	}, []string{"policy", "tier"})

	HitRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_hit_ratio",
		Help: "Hit ratio of the last simulation run by policy",
	}, []string{"policy"})
)

func init() {
	prometheus.MustRegister(Accesses)
	prometheus.MustRegister(Evictions)
	prometheus.MustRegister(EvictMisses)
	prometheus.MustRegister(PinnedRemovals)
	prometheus.MustRegister(Evictable)
	prometheus.MustRegister(Tracked)
	prometheus.MustRegister(HitRatio)
}

func IncAccess(policy string) {
	Accesses.WithLabelValues(policy).Inc()
}

func IncEviction(policy string) {
	Evictions.WithLabelValues(policy).Inc()
}

func IncEvictMiss(policy string) {
	EvictMisses.WithLabelValues(policy).Inc()
}

func IncPinnedRemoval(policy string) {
	PinnedRemovals.WithLabelValues(policy).Inc()
}

func SetOccupancy(policy string, evictable, young, old int) {
	Evictable.WithLabelValues(policy).Set(float64(evictable))
	Tracked.WithLabelValues(policy, "young").Set(float64(young))
	Tracked.WithLabelValues(policy, "old").Set(float64(old))
}

func SetHitRatio(policy string, ratio float64) {
	HitRatio.WithLabelValues(policy).Set(ratio)
}
