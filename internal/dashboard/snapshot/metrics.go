package snapshot

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cosurvival/pkg/platform/sentinel"
)

var operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cosurvival_snapshot_operation_duration_seconds",
	Help:    "Latency of snapshot loads and saves by backend and outcome",
	Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
}, []string{"backend", "op", "outcome"})

func observe(backend, op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		outcome = "miss"
	case err != nil:
		outcome = "error"
	}
	operationDuration.WithLabelValues(backend, op, outcome).Observe(time.Since(start).Seconds())
}
