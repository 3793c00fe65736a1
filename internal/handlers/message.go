package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/metrics"
	"github.com/w12190/message.ly/internal/middleware"
)

// ==========================
// MessageHandler
// ==========================
type MessageHandler struct {
	Guard *auth.Guard
}

// messageID parses the {id} URL param. Non-numeric ids are indistinguishable
// from missing messages at the API surface.
func messageID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ==========================
// Get Message
// ==========================

// GetMessage returns a message with both parties embedded. Sender or recipient
// only; anyone else gets 403.
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(r)
	if !ok {
		JSONError(w, "message not found", http.StatusNotFound)
		return
	}
	username, _ := middleware.GetUsername(r.Context())

	msg, err := h.Guard.AuthorizeMessageRead(r.Context(), username, id)
	if err != nil {
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("get message failed", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": msg})
}

// ==========================
// Create Message
// ==========================

// CreateMessage sends a message from the resolved identity to to_username.
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ToUsername string `json:"to_username" validate:"required,min=2,max=32"`
		Body       string `json:"body" validate:"required,max=10000"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	username, _ := middleware.GetUsername(r.Context())

	msg, err := h.Guard.CreateMessage(r.Context(), username, input.ToUsername, input.Body)
	if err != nil {
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("create message failed", "from", username, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncMessagesSent()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": msg})
}

// ==========================
// Mark Read
// ==========================

// MarkRead sets read_at, recipient only. Re-marking an already-read message
// returns the original receipt unchanged.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(r)
	if !ok {
		JSONError(w, "message not found", http.StatusNotFound)
		return
	}
	username, _ := middleware.GetUsername(r.Context())

	receipt, err := h.Guard.AuthorizeMarkRead(r.Context(), username, id)
	if err != nil {
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("mark read failed", "id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncMessagesRead()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": receipt})
}
