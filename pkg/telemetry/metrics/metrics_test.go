package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:             true,
		Namespace:           "relay_test",
		Subsystem:           "",
		LayerLatencyBuckets: []float64{0.001, 0.01, 0.1, 1},
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewCollectorRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	if c.Registry() != registry {
		t.Fatal("collector should use the supplied registry")
	}

	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected collector to register at least one metric family")
	}
}

func TestCollectorDisabledIsNoop(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	// None of these should panic even though the underlying vectors exist.
	c.RecordConnectionEstablished("tcp", "tcp4")
	c.RecordDialError("tcp")
	c.RecordHeaderWritten("v2", "tcp", "tcp4", 28)
	c.RecordLayerDuration("timeout", time.Millisecond)
	c.RecordLayerOutcome("timeout", OutcomeSuccess)
}

func TestRecordConnectionEstablished(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	c.RecordConnectionEstablished("tcp", "tcp4")
	c.RecordConnectionEstablished("tcp", "tcp4")
	c.RecordConnectionClosed("tcp", "tcp4")

	got := counterValue(t, c.connectionMetrics.established.WithLabelValues("tcp", "tcp4"))
	if got != 2 {
		t.Fatalf("established = %v, want 2", got)
	}

	got = counterValue(t, c.connectionMetrics.closed.WithLabelValues("tcp", "tcp4"))
	if got != 1 {
		t.Fatalf("closed = %v, want 1", got)
	}
}

func TestRecordDialLatencyAndErrors(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordDialLatency("tcp", 5*time.Millisecond)
	c.RecordDialError("tcp")
	c.RecordDialError("tcp")

	got := counterValue(t, c.connectionMetrics.dialErrors.WithLabelValues("tcp"))
	if got != 2 {
		t.Fatalf("dial errors = %v, want 2", got)
	}
}

func TestRecordHeaderWrittenAndError(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordHeaderWritten("v1", "tcp", "tcp4", 56)
	c.RecordHeaderWritten("v2", "udp", "tcp6", 48)
	c.RecordHeaderError("v1", "missing_source")

	got := counterValue(t, c.headerMetrics.written.WithLabelValues("v1", "tcp", "tcp4"))
	if got != 1 {
		t.Fatalf("v1 written = %v, want 1", got)
	}

	got = counterValue(t, c.headerMetrics.errorsTotal.WithLabelValues("v1", "missing_source"))
	if got != 1 {
		t.Fatalf("header errors = %v, want 1", got)
	}
}

func TestRecordLayerDurationAndOutcome(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordLayerDuration("request_id", 100*time.Microsecond)
	c.RecordLayerOutcome("request_id", OutcomeSuccess)
	c.RecordLayerOutcome("catch_panic", OutcomePanicked)

	got := counterValue(t, c.layerMetrics.requests.WithLabelValues("request_id", OutcomeSuccess))
	if got != 1 {
		t.Fatalf("success outcomes = %v, want 1", got)
	}

	got = counterValue(t, c.layerMetrics.requests.WithLabelValues("catch_panic", OutcomePanicked))
	if got != 1 {
		t.Fatalf("panicked outcomes = %v, want 1", got)
	}
}

func TestCardinalityLimiterFoldsExcessLayersIntoOther(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.cardinalityLimiter = NewCardinalityLimiter(2)

	c.RecordLayerDuration("a", time.Millisecond)
	c.RecordLayerDuration("b", time.Millisecond)
	c.RecordLayerDuration("c", time.Millisecond) // should fold into "other"

	got := histogramCount(t, c.layerMetrics.duration.WithLabelValues("c"))
	if got != 0 {
		t.Fatalf("unexpected direct recording for folded layer: %v", got)
	}
	got = histogramCount(t, c.layerMetrics.duration.WithLabelValues("other"))
	if got != 1 {
		t.Fatalf("other bucket samples = %v, want 1", got)
	}
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	var m dto.Metric
	if err := o.(prometheus.Histogram).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCardinalityLimiterAllow(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Fatal("expected third distinct label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Fatal("expected previously-allowed label set to remain allowed")
	}
	if cl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", cl.Count())
	}
}

func TestHandlerServesAndCountsScrapes(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordConnectionEstablished("tcp", "tcp4")

	handler := collector.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "relay_test") {
		t.Errorf("exposition missing namespace:\n%s", body)
	}

	// A second scrape must observe the first one in the scrape counter.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "relay_test_metrics_scrapes_total 1") {
		t.Errorf("scrape counter not exported:\n%s", rec.Body.String())
	}
}
