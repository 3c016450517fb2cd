package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for combinations_requests_total.
const (
	outcomeOK                = "ok"
	outcomeInvalidInput      = "invalid_input"
	outcomePersistence       = "persistence_error"
	outcomeResourceExhausted = "resource_exhausted"
	outcomeReplayed          = "replayed"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combinations_requests_total",
			Help: "Generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	// Derive + generate only; persistence shows up in the HTTP latency.
	processingMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "combinations_processing_ms",
			Help:    "Time spent deriving items and generating combinations, in milliseconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	resultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "combinations_result_size",
			Help:    "Number of combinations produced per request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1..262144
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, processingMs, resultSize)
}

func observeOutcome(err error) {
	switch KindOf(err) {
	case 0:
		if err == nil {
			requestsTotal.WithLabelValues(outcomeOK).Inc()
			return
		}
		requestsTotal.WithLabelValues(outcomePersistence).Inc()
	case KindInvalidInput:
		requestsTotal.WithLabelValues(outcomeInvalidInput).Inc()
	case KindResourceExhausted:
		requestsTotal.WithLabelValues(outcomeResourceExhausted).Inc()
	default:
		requestsTotal.WithLabelValues(outcomePersistence).Inc()
	}
}

func observeGeneration(elapsed time.Duration, n int) {
	processingMs.Observe(millis(elapsed))
	resultSize.Observe(float64(n))
}
