package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for catalog lookups.
type Metrics struct {
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	PlatformCache    *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelib_catalog_provider_calls_total",
			Help: "Catalog provider calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamelib_catalog_provider_duration_seconds",
			Help:    "Latency of catalog provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		PlatformCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelib_catalog_platform_cache_total",
			Help: "Platform list cache lookups by result (hit, miss)",
		}, []string{"result"}),
	}
}

// ObserveCall records one provider call. outcome is "ok" or an error category.
func (m *Metrics) ObserveCall(operation, outcome string, start time.Time) {
	m.ProviderCalls.WithLabelValues(operation, outcome).Inc()
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementCache(result string) {
	m.PlatformCache.WithLabelValues(result).Inc()
}
