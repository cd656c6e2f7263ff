package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/observability/metrics"
)

// StatsWorker periodically samples the catalog size and publishes it as a
// gauge. Read-only telemetry; it never mutates the store.
type StatsWorker struct {
	repo     domain.QuoteRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new catalog stats worker
func NewStatsWorker(repo domain.QuoteRepository, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sampling loop; it returns when ctx is cancelled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.sample()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *StatsWorker) sample() {
	n, err := w.repo.Count()
	if err != nil {
		w.logger.Error("failed to sample catalog size",
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.SetCatalogSize(n)
}
