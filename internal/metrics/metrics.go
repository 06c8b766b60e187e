package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core request/hit/miss counters
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_requests_total",
			Help: "Total number of cache-aside fetches",
		},
		[]string{"kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_hits_total",
			Help: "Total number of cache hits by level",
		},
		[]string{"kind", "level"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_misses_total",
			Help: "Total number of fetches that missed every cache level",
		},
		[]string{"kind"},
	)

	// Fetches answered by another caller's in-flight remote call
	SharedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_shared_fetches_total",
			Help: "Total number of fetches that joined an in-flight remote call",
		},
		[]string{"kind"},
	)

	// Fetches served from the durable tier after the remote call failed
	DurableFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_durable_fallbacks_total",
			Help: "Total number of remote failures answered by the durable tier",
		},
		[]string{"kind"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_cache_errors_total",
			Help: "Cache-internal faults absorbed by a tier",
		},
		[]string{"level", "kind"}, // kind: decode, encode, read, write
	)

	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_remote_calls_total",
			Help: "Total number of remote API calls by outcome",
		},
		[]string{"kind", "outcome"},
	)

	RemoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classroom_remote_call_duration_seconds",
			Help:    "Duration of remote API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	SoftFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_aggregate_soft_failures_total",
			Help: "Secondary sub-fetches degraded to an unavailable marker",
		},
		[]string{"composite", "sub_fetch"},
	)

	// Memory tier occupancy
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "classroom_cache_entries",
			Help: "Number of entries held by a memory pool",
		},
		[]string{"pool"},
	)

	CacheCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "classroom_cache_capacity_entries",
			Help: "Configured entry capacity of a memory pool",
		},
		[]string{"pool"},
	)
)

// RecordCacheRequest records a cache-aside fetch
func RecordCacheRequest(kind string) {
	CacheRequests.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a cache hit at the given level ("l1" or "l2")
func RecordCacheHit(kind string, level string) {
	CacheHits.WithLabelValues(kind, level).Inc()
}

// RecordCacheMiss records a miss on every level
func RecordCacheMiss(kind string) {
	CacheMisses.WithLabelValues(kind).Inc()
}

// RecordSharedFetch records a caller that joined an in-flight fetch
func RecordSharedFetch(kind string) {
	SharedFetches.WithLabelValues(kind).Inc()
}

// RecordDurableFallback records a remote failure served from the durable tier
func RecordDurableFallback(kind string) {
	DurableFallbacks.WithLabelValues(kind).Inc()
}

// RecordCacheError records an absorbed cache fault
func RecordCacheError(level, kind string) {
	CacheErrors.WithLabelValues(level, kind).Inc()
}

// RecordRemoteCall records a remote call outcome ("ok" or an error category)
func RecordRemoteCall(kind, outcome string) {
	RemoteCalls.WithLabelValues(kind, outcome).Inc()
}

// RecordSoftFailure records a sub-fetch degraded to unavailable
func RecordSoftFailure(composite, subFetch string) {
	SoftFailures.WithLabelValues(composite, subFetch).Inc()
}

// UpdateMemoryPool updates occupancy gauges for a memory pool
func UpdateMemoryPool(pool string, entries, capacity int64) {
	CacheEntries.WithLabelValues(pool).Set(float64(entries))
	CacheCapacity.WithLabelValues(pool).Set(float64(capacity))
}

// TimeRemoteCall returns a timer function for measuring remote call duration
func TimeRemoteCall(kind string) func() {
	timer := prometheus.NewTimer(RemoteDuration.WithLabelValues(kind))
	return func() {
		timer.ObserveDuration()
	}
}
