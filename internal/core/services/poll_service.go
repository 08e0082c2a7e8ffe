package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/metrics"
)

type pollService struct {
	repo    ports.PollRepository
	metrics *metrics.Metrics
}

func NewPollService(repo ports.PollRepository, m *metrics.Metrics) ports.PollService {
	return &pollService{
		repo:    repo,
		metrics: m,
	}
}

func (s *pollService) Build(question, rawOptions string) (*domain.Poll, error) {
	return domain.NewPoll(question, rawOptions)
}

func (s *pollService) Register(ctx context.Context, id string, poll *domain.Poll) (domain.Results, error) {
	if poll == nil {
		return domain.Results{}, errors.New("cannot register a nil poll")
	}
	if err := s.repo.Register(ctx, id, poll); err != nil {
		return domain.Results{}, err
	}
	s.metrics.PollCreated()
	return poll.Render(), nil
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	poll, err := s.Build(input.Question, input.RawOptions)
	if err != nil {
		return nil, err
	}
	poll.Origin = input.Origin
	poll.CreatedBy = input.CreatedBy
	if _, err := s.Register(ctx, input.ID, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *pollService) Lookup(ctx context.Context, origin, id string) (*domain.Poll, error) {
	poll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !poll.VisibleTo(origin) {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (s *pollService) Results(ctx context.Context, id string) (domain.Results, error) {
	poll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Results{}, err
	}
	return poll.Render(), nil
}

func (s *pollService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.PollsRemoved(1)
	return nil
}

func (s *pollService) RemoveOwned(ctx context.Context, origin, id, owner string) error {
	poll, err := s.Lookup(ctx, origin, id)
	if err != nil {
		return err
	}
	if owner != "" && poll.CreatedBy != owner {
		return domain.ErrNotPollOwner
	}
	return s.Remove(ctx, id)
}

func (s *pollService) Evict(ctx context.Context, olderThan time.Duration) (int, error) {
	n, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to evict polls: %w", err)
	}
	s.metrics.PollsRemoved(n)
	return n, nil
}

func (s *pollService) Clear(ctx context.Context) (int, error) {
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear polls: %w", err)
	}
	s.metrics.PollsRemoved(n)
	return n, nil
}
