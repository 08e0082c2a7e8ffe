package ports

import (
	"context"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
)

// VoteInput carries a host-scoped voter id (see domain.VoterKey). A
// non-empty Origin limits the vote to polls created through that host.
type VoteInput struct {
	PollID      string
	VoterID     string
	OptionIndex int
	Origin      string
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (domain.Results, error)
}
