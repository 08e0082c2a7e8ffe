package http

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/tengise174/poll-bot-button/internal/adapters/pubsub"
	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

// ResultsHandler upgrades to a websocket and streams a poll's results.
type ResultsHandler struct {
	service        ports.PollService
	hub            *pubsub.Hub
	originPatterns []string
	logger         *slog.Logger
}

func NewResultsHandler(service ports.PollService, hub *pubsub.Hub, originPatterns []string, logger *slog.Logger) *ResultsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandler{
		service:        service,
		hub:            hub,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

func (h *ResultsHandler) StreamResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Lookup(r.Context(), domain.OriginAPI, id); err != nil {
		errorResponse(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "poll_id", id, "error", err)
		return
	}

	err = h.hub.Serve(r.Context(), conn, id, func() (domain.Results, error) {
		poll, err := h.service.Lookup(r.Context(), domain.OriginAPI, id)
		if err != nil {
			return domain.Results{}, err
		}
		return poll.Render(), nil
	})
	if err != nil {
		h.logger.Debug("results stream closed", "poll_id", id, "error", err)
	}
}
