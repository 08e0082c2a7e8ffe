package domain

import (
	"fmt"
	"strings"
)

type ResultLine struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Results is the rendered state of a poll at one point in time.
type Results struct {
	PollID   string       `json:"poll_id"`
	Question string       `json:"question"`
	Lines    []ResultLine `json:"options"`
	Total    int          `json:"total_votes"`
}

// Text formats the results as one "label: N votes" line per option.
func (r Results) Text() string {
	var b strings.Builder
	b.WriteString("Results:")
	for _, l := range r.Lines {
		unit := "votes"
		if l.Count == 1 {
			unit = "vote"
		}
		fmt.Fprintf(&b, "\n%s: %d %s", l.Label, l.Count, unit)
	}
	return b.String()
}
