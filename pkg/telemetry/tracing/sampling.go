package tracing

import (
	"fmt"

	"mercator-hq/relay/pkg/config"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampler strategy names accepted by TracingConfig.Sampler.
const (
	// SamplerAlways records every root trace. Development default.
	SamplerAlways = "always"

	// SamplerNever records no root traces; spans still propagate context.
	SamplerNever = "never"

	// SamplerRatio records SampleRatio of traces, keyed on trace ID so
	// the decision is stable across services.
	SamplerRatio = "ratio"
)

// newSampler builds the SDK sampler for cfg. Whatever the base strategy,
// the result is parent-based: when a connection arrives carrying an
// upstream sampling decision (via its traceparent), relay follows it, so
// a relayed request is traced end to end or not at all — never half of
// the hop chain.
func newSampler(cfg *config.TracingConfig) (sdktrace.Sampler, error) {
	var base sdktrace.Sampler

	switch cfg.Sampler {
	case SamplerAlways, "":
		base = sdktrace.AlwaysSample()
	case SamplerNever:
		base = sdktrace.NeverSample()
	case SamplerRatio:
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			return nil, fmt.Errorf("sample ratio must be within [0, 1], got %g", cfg.SampleRatio)
		}
		base = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	default:
		return nil, fmt.Errorf("unknown sampler strategy %q (valid: always, never, ratio)", cfg.Sampler)
	}

	return sdktrace.ParentBased(base), nil
}
