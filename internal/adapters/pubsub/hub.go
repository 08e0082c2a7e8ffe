package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/metrics"
)

const (
	sendBuffer      = 16
	broadcastBuffer = 64
	writeTimeout    = 5 * time.Second
)

type message struct {
	pollID string
	data   []byte
}

// client is one websocket subscriber of a single poll.
type client struct {
	pollID string
	send   chan []byte
}

// Hub fans rendered results out to websocket subscribers, grouped by poll.
type Hub struct {
	clients    map[string]map[*client]struct{}
	broadcast  chan message
	register   chan *client
	unregister chan *client
	done       chan struct{}

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		broadcast:  make(chan message, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run owns the subscriber map until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, subs := range h.clients {
				for c := range subs {
					close(c.send)
				}
			}
			h.clients = nil
			return

		case c := <-h.register:
			subs := h.clients[c.pollID]
			if subs == nil {
				subs = make(map[*client]struct{})
				h.clients[c.pollID] = subs
			}
			subs[c] = struct{}{}

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			for c := range h.clients[m.pollID] {
				select {
				case c.send <- m.data:
				default:
					h.logger.Warn("dropping slow results subscriber", "poll_id", m.pollID)
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	subs := h.clients[c.pollID]
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
	if len(subs) == 0 {
		delete(h.clients, c.pollID)
	}
}

// Broadcast queues results for every subscriber of the poll. It never blocks.
func (h *Hub) Broadcast(res domain.Results) {
	data, err := json.Marshal(res)
	if err != nil {
		h.logger.Error("failed to encode results", "poll_id", res.PollID, "error", err)
		return
	}
	select {
	case h.broadcast <- message{pollID: res.PollID, data: data}:
	default:
		h.metrics.EventDropped("websocket")
	}
}

// Serve streams results for pollID to conn until the peer goes away, the hub
// stops or ctx is canceled. snapshot is written once the subscription is
// live, so no update between the two is lost. Incoming frames are discarded.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, pollID string, snapshot func() (domain.Results, error)) error {
	c := &client{pollID: pollID, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		return conn.Close(websocket.StatusGoingAway, "shutting down")
	case <-ctx.Done():
		return ctx.Err()
	}

	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	if snapshot != nil {
		res, err := snapshot()
		if err != nil {
			return conn.Close(websocket.StatusPolicyViolation, err.Error())
		}
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = wsjson.Write(writeCtx, conn, res)
		cancel()
		if err != nil {
			return err
		}
	}

	readCtx := conn.CloseRead(ctx)

	for {
		select {
		case <-readCtx.Done():
			return nil
		case data, ok := <-c.send:
			if !ok {
				return conn.Close(websocket.StatusGoingAway, "subscription ended")
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.logger.Debug("results subscriber write failed", "poll_id", pollID, "error", err)
				return err
			}
		}
	}
}
