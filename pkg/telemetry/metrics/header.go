package metrics

import (
	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HeaderMetrics tracks metrics related to the PROXY protocol client layer's
// header encoding (pkg/proxyproto/client).
//
// Metrics:
//   - relay_proxy_headers_written_total: Headers written, by version/transport/family
//   - relay_proxy_header_bytes: Size distribution of written headers
//   - relay_proxy_header_errors_total: Encode/write failures, by version and reason
type HeaderMetrics struct {
	written     *prometheus.CounterVec
	sizeBytes   *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
}

// NewHeaderMetrics creates and registers PROXY header metrics with the
// provided registry.
func NewHeaderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HeaderMetrics {
	hm := &HeaderMetrics{
		written: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_headers_written_total",
				Help:      "Total number of PROXY protocol headers written, by wire version, transport and address family",
			},
			[]string{"version", "transport", "family"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_header_bytes",
				Help:      "Size in bytes of encoded PROXY protocol headers as written (for v2: 16-byte prefix + address block + payload)",
				// v1 lines top out at 107 bytes; v2 binary headers are
				// bounded by the 16-bit length field (65535) plus the
				// 16-byte signature/version/length prefix.
				Buckets: []float64{16, 32, 64, 107, 256, 1024, 4096, 16384, 65551},
			},
			[]string{"version"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "proxy_header_errors_total",
				Help:      "Total number of PROXY header encode/write failures, by wire version and failure reason",
			},
			[]string{"version", "reason"},
		),
	}

	registry.MustRegister(
		hm.written,
		hm.sizeBytes,
		hm.errorsTotal,
	)

	return hm
}

// RecordWritten records a successfully written PROXY header.
func (hm *HeaderMetrics) RecordWritten(version, transport, family string, size int) {
	hm.written.WithLabelValues(version, transport, family).Inc()
	hm.sizeBytes.WithLabelValues(version).Observe(float64(size))
}

// RecordError records a PROXY header failure. reason is a short label such
// as the ones classifyHeaderError in cmd/relay derives from
// pkg/proxyproto/client errors (e.g. "missing_source", "family_mismatch",
// "encode", "io").
func (hm *HeaderMetrics) RecordError(version, reason string) {
	hm.errorsTotal.WithLabelValues(version, reason).Inc()
}
