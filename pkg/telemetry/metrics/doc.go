// Package metrics provides Prometheus metrics collection for relay.
//
// # Overview
//
// The metrics package tracks the lifecycle of a relayed connection end to
// end: upstream connection establishment, PROXY protocol header encoding,
// and the outcome/latency of each named layer in the configured Stack.
//
// # Metrics Categories
//
//   - Connection Metrics: connections established/closed, dial latency and errors
//   - Header Metrics: PROXY headers written (by version/transport/family), encode errors
//   - Layer Metrics: per-layer latency and outcome (success/rejected/timeout/panicked)
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.RecordConnectionEstablished("tcp", "tcp4")
//	collector.RecordDialLatency("tcp", 12*time.Millisecond)
//
//	collector.RecordHeaderWritten("v2", "tcp", "tcp4", 28)
//
//	collector.RecordLayerDuration("timeout", 340*time.Microsecond)
//	collector.RecordLayerOutcome("timeout", metrics.OutcomeSuccess)
//
// # Cardinality Management
//
// RecordLayerDuration tracks at most 10000 distinct layer names, folding
// anything beyond that fixed ceiling into an "other" bucket rather than
// letting a misconfigured Stack blow up label cardinality. The limit is
// not configurable, and RecordLayerOutcome does not apply it.
package metrics
