package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pollbot"

// Vote outcomes used as the "result" label of votes_total.
const (
	VoteAccepted     = "accepted"
	VoteAlreadyVoted = "already_voted"
	VoteInvalid      = "invalid_option"
	VoteNotFound     = "poll_not_found"
	VoteError        = "error"
)

// Metrics holds every collector the bot exports. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	PollsCreated  prometheus.Counter
	PollsActive   prometheus.Gauge
	Votes         *prometheus.CounterVec
	VoteDuration  prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PollsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_created_total",
			Help:      "Total number of polls registered.",
		}),
		PollsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "polls_active",
			Help:      "Number of polls currently held in memory.",
		}),
		Votes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote requests by outcome.",
		}, []string{"result"}),
		VoteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vote_duration_seconds",
			Help:      "Time spent validating and applying a vote.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 10),
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the API.",
		}, []string{"method", "path", "status"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Vote events or result updates dropped because a buffer was full.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) PollCreated() {
	if m == nil {
		return
	}
	m.PollsCreated.Inc()
	m.PollsActive.Inc()
}

func (m *Metrics) PollsRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PollsActive.Sub(float64(n))
}

func (m *Metrics) ObserveVote(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(result).Inc()
	m.VoteDuration.Observe(d.Seconds())
}

func (m *Metrics) IncRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func (m *Metrics) EventDropped(sink string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(sink).Inc()
}
