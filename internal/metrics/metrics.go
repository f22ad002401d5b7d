package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProviderAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_provider_attempts_total",
		Help: "Boundary provider retrieval attempts",
	}, []string{"kind", "provider"})
	ProviderFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_provider_failures_total",
		Help: "Boundary provider attempts that advanced the fallback chain",
	}, []string{"kind", "provider"})
	RejectedFeaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_rejected_features_total",
		Help: "Features dropped by validation",
	}, []string{"kind"})
	LoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_layer_loads_total",
		Help: "Completed layer loads by data origin",
	}, []string{"kind", "origin"})
	LoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aqimap_layer_load_duration_ms",
		Help:    "Layer load duration in milliseconds",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"kind"})
	CompositePassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_composite_passes_total",
		Help: "Render surface rewrites by operation",
	}, []string{"kind", "op"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_cache_hits_total",
		Help: "Payload cache hits",
	}, []string{"kind"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_cache_misses_total",
		Help: "Payload cache misses",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(ProviderAttemptsTotal)
	prometheus.MustRegister(ProviderFailuresTotal)
	prometheus.MustRegister(RejectedFeaturesTotal)
	prometheus.MustRegister(LoadsTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(CompositePassesTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
