package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/retry"
)

const (
	publishAttempts  = 3
	publishBaseDelay = 200 * time.Millisecond
	drainTimeout     = 5 * time.Second
)

// EventWorker drains accepted vote events into a publisher.
type EventWorker struct {
	Ch        <-chan domain.VoteEvent
	publisher ports.VotePublisher
	logger    *slog.Logger
}

func NewEventWorker(ch <-chan domain.VoteEvent, publisher ports.VotePublisher, logger *slog.Logger) *EventWorker {
	return &EventWorker{Ch: ch, publisher: publisher, logger: logger}
}

// Run publishes events until ctx is canceled, then flushes whatever is still
// buffered with a short deadline.
func (w *EventWorker) Run(ctx context.Context) {
	w.logger.Info("event worker started")
	for {
		select {
		case <-ctx.Done():
			w.drain()
			w.logger.Info("event worker stopped")
			return
		case ev := <-w.Ch:
			if ctx.Err() != nil {
				w.drain(ev)
				w.logger.Info("event worker stopped")
				return
			}
			w.publish(ctx, ev)
		}
	}
}

func (w *EventWorker) drain(pending ...domain.VoteEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for _, ev := range pending {
		w.publish(ctx, ev)
	}
	for {
		select {
		case ev := <-w.Ch:
			w.publish(ctx, ev)
		default:
			return
		}
	}
}

func (w *EventWorker) publish(ctx context.Context, ev domain.VoteEvent) {
	err := retry.DoWithRetry(ctx, publishAttempts, publishBaseDelay, func() error {
		return w.publisher.Publish(ctx, ev)
	})
	if err != nil {
		w.logger.Error("failed to publish vote event", "poll_id", ev.PollID, "voter_id", ev.VoterID, "error", err)
	}
}
