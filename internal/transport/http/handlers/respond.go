package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RCDNC/swipedeck/internal/services/sessions"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
	httperrors "github.com/RCDNC/swipedeck/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeOptionalJSON accepts an empty body and leaves target untouched.
func decodeOptionalJSON(r *http.Request, target any) error {
	if err := decodeJSON(r, target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, swipes.ErrValidation), errors.Is(err, sessions.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, sessions.ErrNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "SESSION_NOT_FOUND", Message: "session not found"})
	case errors.Is(err, sessions.ErrForbidden):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: "FORBIDDEN", Message: "session belongs to another user"})
	case errors.Is(err, swipes.ErrNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "CANDIDATE_NOT_AT_HEAD", Message: "candidate is not at the head of the queue"})
	case errors.Is(err, swipes.ErrInvalidState):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "NOTHING_TO_REWIND", Message: "there is no decision to rewind"})
	case errors.Is(err, swipes.ErrBusy):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "SESSION_BUSY", Message: "another operation is in flight", Retryable: true})
	case errors.Is(err, swipes.ErrDependenciesNil):
		writeInternal(w, "SWIPE_BACKEND_UNAVAILABLE", "swipe backend is not configured")
	default:
		if qe, ok := swipes.IsQuotaExceeded(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:    "QUOTA_EXCEEDED",
				Message: qe.Error(),
				Limit:   qe.Limit,
			})
			return
		}
		if tf, ok := swipes.IsTooFast(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many like actions, slow down",
				RetryAfterSec: tf.RetryAfter(),
			})
			return
		}
		if re, ok := swipes.IsRemoteService(err); ok {
			status := http.StatusBadGateway
			if re.Retryable {
				status = http.StatusServiceUnavailable
			}
			httperrors.Write(w, status, httperrors.APIError{
				Code:      "REMOTE_SERVICE_ERROR",
				Message:   re.Message,
				Retryable: re.Retryable,
			})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
