package event

import (
	"context"
	"log/slog"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) ports.VotePublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev domain.VoteEvent) error {
	p.logger.InfoContext(ctx, "vote accepted",
		"poll_id", ev.PollID,
		"voter_id", ev.VoterID,
		"option_index", ev.OptionIndex,
		"option", ev.Option,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
