// Package observability holds the Prometheus instrumentation shared by
// the gateway and its HTTP surface.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the gateway's Prometheus collectors. A single
// instance is built at startup and registered once.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	FallbackHops     prometheus.Counter
	ProviderLatency  *prometheus.HistogramVec
}

// NewMetrics builds the collector set and registers it on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "requests_total",
			Help:      "Analysis requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "cache_hits_total",
			Help:      "Responses served from the cache.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "cache_misses_total",
			Help:      "Requests that missed the cache.",
		}),
		FallbackHops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "fallback_hops_total",
			Help:      "Provider failovers taken after the initial selection.",
		}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "provider_latency_seconds",
			Help:      "Provider call latency by provider and result.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"provider", "result"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.FallbackHops,
		m.ProviderLatency,
	)

	return m
}

// NewNopMetrics builds an unregistered collector set for tests.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
