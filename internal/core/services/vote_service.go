package services

import (
	"context"
	"errors"
	"time"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/metrics"
)

type voteService struct {
	pollRepo    ports.PollRepository
	metrics     *metrics.Metrics
	events      chan<- domain.VoteEvent
	broadcaster ports.ResultsBroadcaster
}

// NewVoteService wires the vote path. events and broadcaster are optional;
// a full events channel drops the event rather than delaying the voter.
func NewVoteService(
	pollRepo ports.PollRepository,
	m *metrics.Metrics,
	events chan<- domain.VoteEvent,
	broadcaster ports.ResultsBroadcaster,
) ports.VoteService {
	return &voteService{
		pollRepo:    pollRepo,
		metrics:     m,
		events:      events,
		broadcaster: broadcaster,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (domain.Results, error) {
	start := time.Now()

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil && !errors.Is(err, domain.ErrPollNotFound) {
		s.metrics.ObserveVote(metrics.VoteError, time.Since(start))
		return domain.Results{}, err
	}

	if !poll.VisibleTo(input.Origin) {
		poll = nil
	}

	results, err := poll.CastVoteThen(input.VoterID, input.OptionIndex, func(res domain.Results) {
		s.emit(domain.VoteEvent{
			PollID:      input.PollID,
			VoterID:     input.VoterID,
			OptionIndex: input.OptionIndex,
			Option:      res.Lines[input.OptionIndex].Label,
			CastAt:      time.Now().UTC(),
		})
		if s.broadcaster != nil {
			s.broadcaster.Broadcast(res)
		}
	})
	s.metrics.ObserveVote(voteOutcome(err), time.Since(start))
	if err != nil {
		return domain.Results{}, err
	}

	return results, nil
}

func (s *voteService) emit(ev domain.VoteEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.metrics.EventDropped("vote_events")
	}
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.VoteAccepted
	case errors.Is(err, domain.ErrAlreadyVoted):
		return metrics.VoteAlreadyVoted
	case errors.Is(err, domain.ErrInvalidOption):
		return metrics.VoteInvalid
	case errors.Is(err, domain.ErrPollNotFound):
		return metrics.VoteNotFound
	default:
		return metrics.VoteError
	}
}
