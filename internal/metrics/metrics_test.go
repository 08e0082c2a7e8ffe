package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.PollCreated()
	m.PollCreated()
	m.PollsRemoved(1)
	m.ObserveVote(VoteAccepted, time.Millisecond)
	m.ObserveVote(VoteAlreadyVoted, time.Millisecond)
	m.ObserveVote(VoteAccepted, time.Millisecond)
	m.IncRequest("GET", "/health", 200)
	m.EventDropped("kafka")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PollsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Votes.WithLabelValues(VoteAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Votes.WithLabelValues(VoteAlreadyVoted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped.WithLabelValues("kafka")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PollCreated()
		m.PollsRemoved(3)
		m.ObserveVote(VoteAccepted, time.Second)
		m.IncRequest("POST", "/", 500)
		m.EventDropped("ws")
	})
}
