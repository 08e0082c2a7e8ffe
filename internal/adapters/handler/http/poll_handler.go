package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/platform/apperr"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createPollRequest struct {
	Question string `json:"question"`
	Options  string `json:"options"`
}

type pollResponse struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Options  []string       `json:"options"`
	Results  domain.Results `json:"results"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid request body", err))
		return
	}

	poll, err := h.service.Create(r.Context(), ports.CreatePollInput{
		ID:         uuid.NewString(),
		Question:   req.Question,
		RawOptions: req.Options,
		Origin:     domain.OriginAPI,
		CreatedBy:  apiVoter(r),
	})
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pollResponse{
		ID:       poll.ID,
		Question: poll.Question,
		Options:  poll.Options,
		Results:  poll.Render(),
	})
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.Lookup(r.Context(), domain.OriginAPI, chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll.Render())
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveOwned(r.Context(), domain.OriginAPI, chi.URLParam(r, "id"), apiVoter(r)); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
