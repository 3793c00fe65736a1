package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/middleware"
	"github.com/w12190/message.ly/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Users    *repo.UserRepo
	Messages *repo.MessageRepo
	Guard    *auth.Guard
}

// ==========================
// List Users
// ==========================

// ListUsers returns all accounts as summaries, ordered by username.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"users": users})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.Users.GetByUsername(r.Context(), username)
	if err != nil {
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("get user failed", "username", username, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"user": user})
}

// ==========================
// Messages To User (inbox)
// ==========================

// MessagesTo lists messages sent to {username}. Only the user themself may
// view their inbox.
func (h *UserHandler) MessagesTo(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	requester, _ := middleware.GetUsername(r.Context())

	if err := h.Guard.AuthorizeThreadAccess(requester, username); err != nil {
		WriteDomainError(w, err)
		return
	}

	messages, err := h.Messages.ListTo(r.Context(), username)
	if err != nil {
		slog.Error("list inbox failed", "username", username, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})
}

// ==========================
// Messages From User (outbox)
// ==========================

// MessagesFrom lists messages sent by {username}. Only the user themself may
// view their outbox.
func (h *UserHandler) MessagesFrom(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	requester, _ := middleware.GetUsername(r.Context())

	if err := h.Guard.AuthorizeThreadAccess(requester, username); err != nil {
		WriteDomainError(w, err)
		return
	}

	messages, err := h.Messages.ListFrom(r.Context(), username)
	if err != nil {
		slog.Error("list outbox failed", "username", username, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})
}
