package ports

import (
	"context"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
)

// VotePublisher ships accepted votes to an external sink.
type VotePublisher interface {
	Publish(ctx context.Context, event domain.VoteEvent) error
	Close() error
}

// ResultsBroadcaster pushes fresh results to live subscribers of a poll.
// Broadcast is called while the poll is locked and must not block.
type ResultsBroadcaster interface {
	Broadcast(results domain.Results)
}
