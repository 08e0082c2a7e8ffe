package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

// Janitor periodically drops polls older than TTL so the registry does not
// grow for the whole life of the process.
type Janitor struct {
	polls    ports.PollService
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(polls ports.PollService, ttl, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{polls: polls, ttl: ttl, interval: interval, logger: logger}
}

func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("poll janitor started", "ttl", j.ttl, "interval", j.interval)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("poll janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *Janitor) Sweep(ctx context.Context) int {
	n, err := j.polls.Evict(ctx, j.ttl)
	if err != nil {
		j.logger.Error("poll sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Info("evicted expired polls", "count", n)
	}
	return n
}
