package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubciclismoepn/backend/internal/metrics"
	"github.com/clubciclismoepn/backend/internal/repository"
)

// Janitor deletes used and expired recovery tokens on an interval. Spent
// rows only feed the check() read path for a short grace; once purged,
// their 6-digit values become reissuable.
type Janitor struct {
	tokens   repository.RecoveryTokenRepository
	logger   *slog.Logger
	interval time.Duration
}

func NewJanitor(tokens repository.RecoveryTokenRepository, logger *slog.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		tokens:   tokens,
		logger:   logger.With("component", "janitor"),
		interval: interval,
	}
}

func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("token janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("token janitor shut down")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	deleted, err := j.tokens.DeleteStale(ctx, time.Now(), 500)
	if err != nil {
		j.logger.Error("purge stale tokens", "error", err)
		return
	}
	if deleted > 0 {
		metrics.TokensPurgedTotal.Add(float64(deleted))
		j.logger.Info("purged stale recovery tokens", "count", deleted)
	}
}
