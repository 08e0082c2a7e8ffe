package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

type pollRepository struct {
	mu    sync.RWMutex
	polls map[string]*domain.Poll
}

func NewPollRepository() ports.PollRepository {
	return &pollRepository{
		polls: make(map[string]*domain.Poll),
	}
}

func (r *pollRepository) Register(ctx context.Context, id string, poll *domain.Poll) error {
	if id == "" {
		return fmt.Errorf("failed to register poll: %w", domain.ErrMissingField)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.polls[id]; exists {
		return fmt.Errorf("poll %s: %w", id, domain.ErrPollExists)
	}

	poll.ID = id
	r.polls[id] = poll
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (r *pollRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.polls, id)
	return nil
}

func (r *pollRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, poll := range r.polls {
		if poll.CreatedAt.Before(cutoff) {
			delete(r.polls, id)
			removed++
		}
	}
	return removed, nil
}

func (r *pollRepository) Clear(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.polls)
	r.polls = make(map[string]*domain.Poll)
	return n, nil
}

func (r *pollRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.polls)
}
