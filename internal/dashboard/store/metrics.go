package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosurvival_store_mutations_total",
		Help: "Committed store mutations by operation",
	}, []string{"op"})

	persistFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosurvival_store_persist_failures_total",
		Help: "Snapshot loads and saves that failed and fell back to memory-only state",
	}, []string{"op"})

	persistDegraded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cosurvival_store_persist_degraded",
		Help: "1 while snapshot persistence is failing repeatedly",
	})
)
