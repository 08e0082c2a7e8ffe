package http

import (
	"errors"
	"net/http"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	switch {
	case errors.Is(err, domain.ErrMissingField):
		return apperr.BadRequest("missing_field", "question and options are required", err)
	case errors.Is(err, domain.ErrOptionCountOutOfRange):
		return apperr.BadRequest("option_count_out_of_range", "a poll needs between 2 and 5 options", err)
	case errors.Is(err, domain.ErrInvalidOption):
		return apperr.BadRequest("invalid_option", "option index is out of range", err)
	case errors.Is(err, domain.ErrPollNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, domain.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "you have already voted in this poll", err)
	case errors.Is(err, domain.ErrPollExists):
		return apperr.Conflict("poll_exists", "a poll with this id already exists", err)
	case errors.Is(err, domain.ErrNotPollOwner):
		return apperr.Forbidden("not_poll_owner", "only the poll creator can delete it", err)
	default:
		return apperr.FromError(err)
	}
}
