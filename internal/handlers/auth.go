package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/metrics"
	"github.com/w12190/message.ly/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users         *repo.UserRepo
	Authenticator *auth.Authenticator
}

// ==========================
// Register
// ==========================

// Register creates an account. The stored record includes the password hash;
// the response does not (stripped at the boundary by the model's json tags).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string `json:"username" validate:"required,min=2,max=32"`
		Password  string `json:"password" validate:"required,min=6,max=72"`
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"required,max=100"`
		Phone     string `json:"phone" validate:"required,max=32"`
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

	user, err := h.Users.Create(r.Context(), input.Username, input.Password, input.FirstName, input.LastName, input.Phone)
	if err != nil {
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// ==========================
// Login
// ==========================

// Login verifies credentials and returns {"token": ...}. Unknown usernames and
// wrong passwords produce the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	token, err := h.Authenticator.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		metrics.IncLogins("failure")
		if WriteDomainError(w, err) {
			return
		}
		slog.Error("login failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("success")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
