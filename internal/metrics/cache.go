package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result cache Prometheus metrics.
var (
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docgate",
			Name:      "result_cache_lookups_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docgate",
			Name:      "result_cache_invalidations_total",
			Help:      "Tenant-scoped cache invalidations",
		},
	)
)

var cacheMetricsRegistered bool

// RegisterCacheMetrics registers Prometheus cache metrics. Must be called once from main.
func RegisterCacheMetrics() {
	if cacheMetricsRegistered {
		return
	}
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CacheInvalidationsTotal)
	cacheMetricsRegistered = true
}
