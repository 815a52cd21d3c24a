package metrics

import (
	"sync"
	"time"

	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in relay.
// It manages metric registration and provides a unified interface for
// recording metrics across connection handling, PROXY header encoding, and
// Stack layer execution.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	connectionMetrics *ConnectionMetrics
	headerMetrics     *HeaderMetrics
	layerMetrics      *LayerMetrics

	scrapes        prometheus.Counter
	scrapeDuration prometheus.Histogram

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "relay"
	}
	if len(cfg.LayerLatencyBuckets) == 0 {
		cfg.LayerLatencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.connectionMetrics = NewConnectionMetrics(cfg, registry)
	c.headerMetrics = NewHeaderMetrics(cfg, registry)
	c.layerMetrics = NewLayerMetrics(cfg, registry)

	c.scrapes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "metrics_scrapes_total",
		Help:      "Scrapes served by the /metrics endpoint.",
	})
	c.scrapeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "metrics_scrape_duration_seconds",
		Help:      "Time spent rendering a /metrics scrape.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	registry.MustRegister(c.scrapes, c.scrapeDuration)

	return c
}

// RecordConnectionEstablished records a successfully established upstream
// connection for the given transport ("tcp"/"udp") and address family
// ("tcp4"/"tcp6").
func (c *Collector) RecordConnectionEstablished(transport, family string) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordEstablished(transport, family)
}

// RecordConnectionClosed records an upstream connection being closed.
func (c *Collector) RecordConnectionClosed(transport, family string) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordClosed(transport, family)
}

// RecordDialLatency records how long dialing the upstream connection took.
func (c *Collector) RecordDialLatency(transport string, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordDialLatency(transport, d.Seconds())
}

// RecordDialError records a failed dial attempt to the upstream.
func (c *Collector) RecordDialError(transport string) {
	if !c.config.Enabled {
		return
	}
	c.connectionMetrics.RecordDialError(transport)
}

// RecordHeaderWritten records a PROXY protocol header successfully written
// onto the upstream connection.
func (c *Collector) RecordHeaderWritten(version, transport, family string, size int) {
	if !c.config.Enabled {
		return
	}
	c.headerMetrics.RecordWritten(version, transport, family, size)
}

// RecordHeaderError records a PROXY header encode or write failure.
func (c *Collector) RecordHeaderError(version, reason string) {
	if !c.config.Enabled {
		return
	}
	c.headerMetrics.RecordError(version, reason)
}

// RecordLayerDuration records how long a single named layer took to serve a
// request.
func (c *Collector) RecordLayerDuration(layer string, d time.Duration) {
	if !c.config.Enabled {
		return
	}

	labelSet := "layer:" + layer
	if !c.cardinalityLimiter.Allow(labelSet) {
		layer = "other"
	}

	c.layerMetrics.RecordDuration(layer, d.Seconds())
}

// RecordLayerOutcome records the terminal outcome of a layer's Serve call.
func (c *Collector) RecordLayerOutcome(layer, outcome string) {
	if !c.config.Enabled {
		return
	}
	c.layerMetrics.RecordOutcome(layer, outcome)
}

// Registry returns the Prometheus registry used by this collector. It can be
// used to build an HTTP handler for the metrics endpoint directly, though
// Handler (handler.go) already does so.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting the
// number of unique label combinations tracked per metric family.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label set may be recorded. Returns true if the
// label set is already tracked or the limit hasn't been reached; false if
// adding it would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
