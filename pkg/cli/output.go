package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OutputFormat selects how a command renders its final result.
type OutputFormat string

const (
	// FormatText is the human-readable default.
	FormatText OutputFormat = "text"
	// FormatJSON renders the result as indented JSON, for scripting.
	FormatJSON OutputFormat = "json"
)

// BenchmarkReport is the final result of a dial benchmark run against a
// relay listener.
type BenchmarkReport struct {
	Target    string
	Requested int
	Summary   DialSummary
}

// benchmarkReportJSON is the wire shape of a BenchmarkReport: durations
// become millisecond floats so the output is consumable without Go's
// duration syntax.
type benchmarkReportJSON struct {
	Target        string  `json:"target"`
	Requested     int     `json:"requested"`
	Attempted     int     `json:"attempted"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	ElapsedSecs   float64 `json:"elapsed_seconds"`
	RatePerSecond float64 `json:"rate_per_second"`
	LatencyP50MS  float64 `json:"latency_p50_ms"`
	LatencyP90MS  float64 `json:"latency_p90_ms"`
	LatencyP99MS  float64 `json:"latency_p99_ms"`
	LatencyMaxMS  float64 `json:"latency_max_ms"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WriteReport renders r to w in the requested format. An empty format is
// treated as text.
func WriteReport(w io.Writer, format OutputFormat, r BenchmarkReport) error {
	switch format {
	case FormatJSON:
		s := r.Summary
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(benchmarkReportJSON{
			Target:        r.Target,
			Requested:     r.Requested,
			Attempted:     s.Succeeded + s.Failed,
			Succeeded:     s.Succeeded,
			Failed:        s.Failed,
			ElapsedSecs:   s.Elapsed.Seconds(),
			RatePerSecond: s.Rate,
			LatencyP50MS:  millis(s.P50),
			LatencyP90MS:  millis(s.P90),
			LatencyP99MS:  millis(s.P99),
			LatencyMaxMS:  millis(s.Max),
		})

	case FormatText, "":
		s := r.Summary
		fmt.Fprintln(w, "Results:")
		fmt.Fprintf(w, "  Target:   %s\n", r.Target)
		fmt.Fprintf(w, "  Dials:    %d attempted, %d succeeded, %d failed\n",
			s.Succeeded+s.Failed, s.Succeeded, s.Failed)
		fmt.Fprintf(w, "  Elapsed:  %s (%.1f conn/s)\n", s.Elapsed.Round(time.Millisecond), s.Rate)
		if s.Succeeded > 0 {
			fmt.Fprintf(w, "  Latency:  p50=%s p90=%s p99=%s max=%s\n",
				s.P50.Round(time.Microsecond), s.P90.Round(time.Microsecond),
				s.P99.Round(time.Microsecond), s.Max.Round(time.Microsecond))
		}
		return nil

	default:
		return fmt.Errorf("unknown output format %q (valid: text, json)", format)
	}
}
