package domain

import "errors"

var (
	ErrMissingField          = errors.New("question and options are required")
	ErrOptionCountOutOfRange = errors.New("a poll needs between 2 and 5 options")
	ErrPollNotFound          = errors.New("poll not found")
	ErrPollExists            = errors.New("poll already registered")
	ErrAlreadyVoted          = errors.New("user has already voted")
	ErrInvalidOption         = errors.New("invalid option for this poll")
	ErrNotPollOwner          = errors.New("only the poll creator can do this")
)
