package domain

import "time"

// VoteEvent describes an accepted vote for downstream consumers.
type VoteEvent struct {
	PollID      string    `json:"poll_id"`
	VoterID     string    `json:"voter_id"`
	OptionIndex int       `json:"option_index"`
	Option      string    `json:"option"`
	CastAt      time.Time `json:"cast_at"`
}
