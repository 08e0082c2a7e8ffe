package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/platform/apperr"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionIndex *int `json:"option_index"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid request body", err))
		return
	}
	if req.OptionIndex == nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "option_index is required", nil))
		return
	}

	voterID := apiVoter(r)
	if voterID == "" {
		errorResponse(w, apperr.Unauthorized("missing_token", "missing voter identity", nil))
		return
	}

	res, err := h.service.Vote(r.Context(), ports.VoteInput{
		PollID:      chi.URLParam(r, "id"),
		VoterID:     voterID,
		OptionIndex: *req.OptionIndex,
		Origin:      domain.OriginAPI,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
