package search

import "github.com/prometheus/client_golang/prometheus"

// Prometheus instrumentation for the search worker pool and fitness
// evaluations, registered against the default registry the same way the
// pack's coinbase bot wires its trading metrics: package-level vars, a
// single init() registration, small setter helpers used by the rest of the
// package.
var (
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantback_search_evaluations_total",
			Help: "Parameter combinations evaluated, by search kind and outcome.",
		},
		[]string{"kind", "outcome"}, // kind: grid|genetic, outcome: ok|error
	)

	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantback_search_evaluation_seconds",
			Help:    "Wall time of a single patch+run+metrics evaluation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantback_search_active_workers",
			Help: "Evaluations currently in flight in the bounded worker pool.",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationsTotal, evaluationDuration, activeWorkers)
}

func recordEvaluation(kind string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	evaluationsTotal.WithLabelValues(kind, outcome).Inc()
	evaluationDuration.Observe(seconds)
}
