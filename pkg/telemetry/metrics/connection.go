package metrics

import (
	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionMetrics tracks metrics related to upstream connection
// establishment.
//
// Metrics:
//   - relay_connections_established_total: Connections successfully established, by transport and family
//   - relay_connections_closed_total: Connections closed, by transport and family
//   - relay_dial_latency_seconds: Upstream dial latency
//   - relay_dial_errors_total: Dial failures by transport
type ConnectionMetrics struct {
	established *prometheus.CounterVec
	closed      *prometheus.CounterVec
	dialLatency *prometheus.HistogramVec
	dialErrors  *prometheus.CounterVec
}

// NewConnectionMetrics creates and registers connection metrics with the
// provided registry.
func NewConnectionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConnectionMetrics {
	cm := &ConnectionMetrics{
		established: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connections_established_total",
				Help:      "Total number of upstream connections established, by transport and address family",
			},
			[]string{"transport", "family"},
		),

		closed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connections_closed_total",
				Help:      "Total number of upstream connections closed, by transport and address family",
			},
			[]string{"transport", "family"},
		),

		dialLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dial_latency_seconds",
				Help:      "Latency of dialing the upstream connection, by transport",
				Buckets:   cfg.LayerLatencyBuckets,
			},
			[]string{"transport"},
		),

		dialErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dial_errors_total",
				Help:      "Total number of upstream dial failures, by transport",
			},
			[]string{"transport"},
		),
	}

	registry.MustRegister(
		cm.established,
		cm.closed,
		cm.dialLatency,
		cm.dialErrors,
	)

	return cm
}

// RecordEstablished records a successfully established upstream connection.
func (cm *ConnectionMetrics) RecordEstablished(transport, family string) {
	cm.established.WithLabelValues(transport, family).Inc()
}

// RecordClosed records an upstream connection being closed.
func (cm *ConnectionMetrics) RecordClosed(transport, family string) {
	cm.closed.WithLabelValues(transport, family).Inc()
}

// RecordDialLatency records how long dialing the upstream took.
func (cm *ConnectionMetrics) RecordDialLatency(transport string, seconds float64) {
	cm.dialLatency.WithLabelValues(transport).Observe(seconds)
}

// RecordDialError records a failed dial attempt.
func (cm *ConnectionMetrics) RecordDialError(transport string) {
	cm.dialErrors.WithLabelValues(transport).Inc()
}
