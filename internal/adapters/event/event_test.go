package event

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := domain.VoteEvent{PollID: "msg-1", VoterID: "user1", OptionIndex: 1, Option: "tacos", CastAt: at}

	msg, err := newMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, []byte("msg-1"), msg.Key)
	assert.Equal(t, at, msg.Time)

	var decoded domain.VoteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := pub.Publish(context.Background(), domain.VoteEvent{PollID: "p", VoterID: "v", Option: "yes"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"poll_id":"p"`)
	assert.Contains(t, buf.String(), `"option":"yes"`)
	assert.NoError(t, pub.Close())
}
