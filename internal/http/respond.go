package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"smallledger/internal/auth"
	"smallledger/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validationErrors are the domain failures reported back as 400s with their
// own message.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrEmptyCategory,
	core.ErrEmptyName,
	core.ErrEmptyTitle,
	core.ErrInvalidPeriod,
	core.ErrInvalidStatus,
	core.ErrInvalidPriority,
	core.ErrInvalidQuadrant,
	core.ErrInvalidDateRange,
	core.ErrLongDescription,
	core.ErrMissingDate,
	core.ErrInvalidUsername,
	core.ErrPasswordTooShort,
}

// respondError maps domain and auth errors onto HTTP statuses. Every auth
// failure collapses to the same 401 body so a caller cannot probe which step
// rejected the token, and a row owned by someone else 404s exactly like a
// missing one.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	for _, verr := range validationErrors {
		if errors.Is(err, verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
	}

	switch {
	case errors.Is(err, core.ErrUsernameTaken):
		writeError(w, http.StatusConflict, core.ErrUsernameTaken.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		// Amount fields validate while decoding; surface that the same way
		// Validate failures are surfaced.
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, core.ErrInvalidAmount.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
