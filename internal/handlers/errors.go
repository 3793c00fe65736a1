package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/repo"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// WriteDomainError maps the closed error taxonomy to a status code and body.
// Unrecognized errors get the generic 500; the caller logs them.
// Returns false when the error was not a known kind.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, repo.ErrDuplicateUsername):
		JSONError(w, repo.ErrDuplicateUsername.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrUserNotFound):
		JSONError(w, repo.ErrUserNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrMessageNotFound):
		JSONError(w, repo.ErrMessageNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrSelfMessage):
		JSONError(w, repo.ErrSelfMessage.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		JSONError(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken):
		JSONError(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrForbidden):
		JSONError(w, "don't read your neighbor's mail", http.StatusForbidden)
	default:
		return false
	}
	return true
}
