package domain

import (
	"strings"
	"sync"
	"time"
)

const (
	MinOptions = 2
	MaxOptions = 5

	optionSeparator = ","
)

// Poll is a question with a fixed, ordered set of options and a running
// tally. The tally is indexed by option position, so two options with the
// same label are still counted separately.
type Poll struct {
	ID        string
	Question  string
	Options   []string
	CreatedAt time.Time
	Origin    string
	CreatedBy string

	mu     sync.Mutex
	tally  []int
	voters map[string]struct{}
}

// NewPoll builds an unregistered poll from the raw command input. rawOptions
// is a comma separated list of labels.
func NewPoll(question, rawOptions string) (*Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" || strings.TrimSpace(rawOptions) == "" {
		return nil, ErrMissingField
	}

	options := ParseOptions(rawOptions)
	if len(options) < MinOptions || len(options) > MaxOptions {
		return nil, ErrOptionCountOutOfRange
	}
	for _, opt := range options {
		if opt == "" {
			return nil, ErrMissingField
		}
	}

	return &Poll{
		Question:  question,
		Options:   options,
		CreatedAt: time.Now(),
		tally:     make([]int, len(options)),
		voters:    make(map[string]struct{}),
	}, nil
}

// ParseOptions splits raw on commas and trims every segment.
func ParseOptions(raw string) []string {
	parts := strings.Split(raw, optionSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// CastVote records a single vote for voterID. A voter who already voted is
// rejected before the index is looked at.
func (p *Poll) CastVote(voterID string, optionIndex int) (Results, error) {
	return p.CastVoteThen(voterID, optionIndex, nil)
}

// CastVoteThen is CastVote with onAccept called before the poll is unlocked.
// Renders handed to onAccept for one poll are therefore in tally order.
// onAccept must not block or touch the poll.
func (p *Poll) CastVoteThen(voterID string, optionIndex int, onAccept func(Results)) (Results, error) {
	if p == nil {
		return Results{}, ErrPollNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.voters[voterID]; ok {
		return Results{}, ErrAlreadyVoted
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return Results{}, ErrInvalidOption
	}

	p.tally[optionIndex]++
	p.voters[voterID] = struct{}{}

	res := p.render()
	if onAccept != nil {
		onAccept(res)
	}
	return res, nil
}

// Render returns the current tally in option order.
func (p *Poll) Render() Results {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render()
}

func (p *Poll) HasVoted(voterID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.voters[voterID]
	return ok
}

func (p *Poll) VoterCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.voters)
}

// Counts returns a copy of the tally, one entry per option.
func (p *Poll) Counts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.tally))
	copy(out, p.tally)
	return out
}

func (p *Poll) render() Results {
	res := Results{
		PollID:   p.ID,
		Question: p.Question,
		Lines:    make([]ResultLine, len(p.Options)),
	}
	for i, label := range p.Options {
		res.Lines[i] = ResultLine{Index: i, Label: label, Count: p.tally[i]}
		res.Total += p.tally[i]
	}
	return res
}
