package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosurvival_querycache_lookups_total",
		Help: "Cache lookups by query name and result (fresh, stale, miss)",
	}, []string{"query", "result"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosurvival_querycache_refreshes_total",
		Help: "Completed refreshes by query name and outcome",
	}, []string{"query", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosurvival_querycache_retries_total",
		Help: "Producer retries by query name",
	}, []string{"query"})

	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cosurvival_querycache_evictions_total",
		Help: "Idle entries dropped from the cache",
	})

	inflightRefreshes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cosurvival_querycache_inflight_refreshes",
		Help: "Refreshes currently in flight across all keys",
	})
)
