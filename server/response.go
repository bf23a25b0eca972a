package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	apperrors "github.com/The-entrepreneur/reent/internal/errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto the HTTP status taxonomy.
// Unknown errors collapse to a generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrInvalidTokenType),
		errors.Is(err, apperrors.ErrInvalidOrExpiredToken),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrUserInactive):
		writeError(w, http.StatusUnauthorized, "unauthorized", rootMessage(err))
	case errors.Is(err, apperrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", rootMessage(err))
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", rootMessage(err))
	case errors.Is(err, apperrors.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "bad_request", rootMessage(err))
	case errors.Is(err, apperrors.ErrTooManyLogins),
		errors.Is(err, apperrors.ErrVerificationLocked):
		writeError(w, http.StatusTooManyRequests, "rate_limited", rootMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func rootMessage(err error) string {
	return errors.Cause(err).Error()
}
