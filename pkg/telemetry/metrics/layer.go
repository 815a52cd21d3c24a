package metrics

import (
	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by LayerMetrics.RecordOutcome. These mirror the
// sentinel errors in pkg/service (ErrRejected, ErrTimeout, panic recovery
// in the catch_panic layer) plus the success path.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeTimeout  = "timeout"
	OutcomePanicked = "panicked"
)

// LayerMetrics tracks per-layer request handling outcomes and latency for a
// configured Stack (pkg/service, pkg/config StackConfig).
//
// Metrics:
//   - relay_layer_duration_seconds: Latency of a single named layer, histogram
//   - relay_layer_requests_total: Requests handled by a layer, by outcome
type LayerMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewLayerMetrics creates and registers layer metrics with the provided
// registry.
func NewLayerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LayerMetrics {
	lm := &LayerMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "layer_duration_seconds",
				Help:      "Time spent inside a single named layer's Serve call",
				Buckets:   cfg.LayerLatencyBuckets,
			},
			[]string{"layer"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "layer_requests_total",
				Help:      "Total number of requests handled by a layer, by outcome",
			},
			[]string{"layer", "outcome"},
		),
	}

	registry.MustRegister(lm.duration, lm.requests)

	return lm
}

// RecordDuration records how long a named layer took to Serve a request.
func (lm *LayerMetrics) RecordDuration(layer string, seconds float64) {
	lm.duration.WithLabelValues(layer).Observe(seconds)
}

// RecordOutcome records the terminal outcome of a layer's Serve call. outcome
// should be one of OutcomeSuccess, OutcomeRejected, OutcomeTimeout or
// OutcomePanicked.
func (lm *LayerMetrics) RecordOutcome(layer, outcome string) {
	lm.requests.WithLabelValues(layer, outcome).Inc()
}
