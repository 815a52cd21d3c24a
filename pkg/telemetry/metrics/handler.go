package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the /metrics endpoint for the collector's registry,
// instrumented with the collector's own scrape telemetry: every scrape is
// counted and timed into the same registry it reads, so a slow or
// over-eager Prometheus shows up in its own data.
//
//	collector := metrics.NewCollector(cfg, nil)
//	mux.Handle(cfg.Path, collector.Handler())
//
// In-flight scrapes are capped at 2; relay's registry is small and a
// scrape pile-up means the scraper is misconfigured, not that more
// concurrency would help.
func (c *Collector) Handler() http.Handler {
	inner := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 2,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		c.scrapes.Inc()
		c.scrapeDuration.Observe(time.Since(start).Seconds())
	})
}
