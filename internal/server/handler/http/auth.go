// Package http provides the HTTP handlers for the NovaBank API:
// registration, login, dashboard, funds movement, and the administrative
// account listing.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/repository"
	"github.com/atinyakov/NovaBank/internal/service"
)

// AuthService defines the interface for identity operations required by the
// HTTP handlers.
type AuthService interface {
	// Register creates a new client and its initial account.
	Register(ctx context.Context, req models.RegisterRequest) (models.ClientProfile, error)
	// Login verifies credentials and issues a bearer token.
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)
	// ClientByID fetches a client profile by ID.
	ClientByID(ctx context.Context, id int64) (models.ClientProfile, error)
}

// AuthHandler handles HTTP requests for client registration and login.
type AuthHandler struct {
	// AuthService performs the underlying identity operations.
	AuthService AuthService
}

// Register handles POST /auth/register.
// It expects a JSON body with full_name, email, phone_number, cip, and
// password, and responds 201 with the created client profile.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	client, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "client registered successfully",
		"client":  client,
	})
}

// Login handles POST /auth/login.
// On success it responds with `{token, client}`; on bad credentials with
// 401 and the `{message}` envelope.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	resp, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.MessageResponse{Message: message})
}

// writeServiceError maps service and repository errors onto the contract's
// status codes, always with the `{message}` envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSameAccount),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, repository.ErrInsufficientFunds):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbiddenAccount):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSenderNotFound),
		errors.Is(err, service.ErrReceiverNotFound),
		errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrClientNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
