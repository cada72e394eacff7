// SPDX-License-Identifier: MIT

// Package metrics exposes prometheus instrumentation for chain rebuilds
// and asset resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chainRebuildTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skind",
			Name:      "chain_rebuild_total",
			Help:      "Total skin chain rebuilds per ruleset",
		},
		[]string{"ruleset"},
	)

	chainRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skind",
			Name:      "chain_rebuild_duration_seconds",
			Help:      "Skin chain rebuild duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"ruleset"},
	)

	chainSources = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "skind",
			Name:      "chain_sources",
			Help:      "Number of sources in the composed chain per ruleset",
		},
		[]string{"ruleset"},
	)

	resolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skind",
			Name:      "resolve_total",
			Help:      "Total asset resolutions by serving tier and result",
		},
		[]string{"ruleset", "tier", "result"},
	)

	resolveCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skind",
			Name:      "resolve_cache_total",
			Help:      "Resolution cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)
)

// ChainRebuilt records one chain rebuild.
func ChainRebuilt(ruleset string, sources int, elapsed time.Duration) {
	chainRebuildTotal.WithLabelValues(ruleset).Inc()
	chainRebuildDuration.WithLabelValues(ruleset).Observe(elapsed.Seconds())
	chainSources.WithLabelValues(ruleset).Set(float64(sources))
}

// ResolveServed records a resolution served from the chain.
func ResolveServed(ruleset, tier, result string) {
	resolveTotal.WithLabelValues(ruleset, tier, result).Inc()
}

// CacheLookup records a resolution cache hit or miss.
func CacheLookup(backend, result string) {
	resolveCacheTotal.WithLabelValues(backend, result).Inc()
}
