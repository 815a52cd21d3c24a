package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
)

// housekeeper runs periodic background jobs against a long-lived relay
// listener on a cron schedule. Today that is connection-pool statistics
// logging: it gathers the Prometheus collector's current sample counts
// and emits them as a structured log line.
type housekeeper struct {
	cron      *cron.Cron
	collector *metrics.Collector
	logger    *logging.Logger

	mu      sync.Mutex
	running bool
}

func newHousekeeper(collector *metrics.Collector, logger *logging.Logger) *housekeeper {
	return &housekeeper{
		cron:      cron.New(),
		collector: collector,
		logger:    logger,
	}
}

// Start schedules the stats job per cfg.Housekeeping.Schedule. It is a
// no-op if housekeeping is disabled. The returned error is non-nil only for
// a malformed schedule; Config validation should have already caught this.
func (h *housekeeper) Start(ctx context.Context, cfg *config.HousekeepingConfig) error {
	if !cfg.Enabled {
		h.logger.Debug("housekeeping disabled, skipping scheduler")
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid housekeeping schedule %q: %w", cfg.Schedule, err)
	}

	if _, err := h.cron.AddFunc(cfg.Schedule, h.logStats); err != nil {
		return fmt.Errorf("scheduling housekeeping job: %w", err)
	}

	h.cron.Start()
	h.running = true
	h.logger.Info("housekeeping scheduler started", "schedule", cfg.Schedule)

	go func() {
		<-ctx.Done()
		h.Stop()
	}()

	return nil
}

// logStats gathers the collector's Prometheus registry and logs the number
// of metric families and total samples currently tracked, giving operators
// a lightweight pulse of pool activity without scraping /metrics.
func (h *housekeeper) logStats() {
	families, err := h.collector.Registry().Gather()
	if err != nil {
		h.logger.Error("housekeeping stats gather failed", "error", err)
		return
	}

	samples := 0
	for _, fam := range families {
		samples += len(fam.GetMetric())
	}

	h.logger.Info("pool stats",
		"metric_families", len(families),
		"samples", samples,
		"log_lines_dropped", h.logger.Dropped(),
	)
}

// Stop stops the scheduler and waits for any in-flight job to finish.
func (h *housekeeper) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		stopCtx := h.cron.Stop()
		<-stopCtx.Done()
		h.running = false
		h.logger.Info("housekeeping scheduler stopped")
	}
}
