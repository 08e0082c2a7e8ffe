package ports

import (
	"context"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
)

type PollRepository interface {
	Register(ctx context.Context, id string, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Clear(ctx context.Context) (int, error)
	Len() int
}

type CreatePollInput struct {
	ID         string
	Question   string
	RawOptions string
	Origin     string
	CreatedBy  string
}

type PollService interface {
	// Build validates the input and returns an unregistered poll.
	Build(question, rawOptions string) (*domain.Poll, error)
	// Register stores a built poll under an id minted by the host.
	Register(ctx context.Context, id string, poll *domain.Poll) (domain.Results, error)
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	// Lookup is GetPoll limited to polls created through origin. Polls of
	// other hosts are reported as not found.
	Lookup(ctx context.Context, origin, id string) (*domain.Poll, error)
	Results(ctx context.Context, id string) (domain.Results, error)
	Remove(ctx context.Context, id string) error
	// RemoveOwned removes a poll of origin. A non-empty owner must match the
	// poll's creator.
	RemoveOwned(ctx context.Context, origin, id, owner string) error
	Evict(ctx context.Context, olderThan time.Duration) (int, error)
	Clear(ctx context.Context) (int, error)
}
