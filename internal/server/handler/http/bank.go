package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/NovaBank/internal/middleware"
	"github.com/atinyakov/NovaBank/internal/models"
)

// BankService defines the interface for dashboard and funds-movement
// operations required by the HTTP handlers.
type BankService interface {
	// Dashboard assembles the client's profile, accounts, and cards.
	Dashboard(ctx context.Context, client models.ClientProfile) (models.DashboardResponse, error)
	// Transfer validates and executes a funds transfer.
	Transfer(ctx context.Context, clientID int64, req models.TransferRequest, idemKey string) error
	// Payment validates and executes a bill payment.
	Payment(ctx context.Context, clientID int64, req models.PaymentRequest, idemKey string) error
	// History returns one account's transactions, newest first.
	History(ctx context.Context, clientID, accountID int64) ([]models.HistoryEntry, error)
	// AllAccounts returns every account for the administrative listing.
	AllAccounts(ctx context.Context) ([]models.AdminAccount, error)
}

// BankHandler handles the protected banking endpoints.
type BankHandler struct {
	// AuthService resolves the authenticated client's profile.
	AuthService AuthService
	// BankService performs the underlying banking operations.
	BankService BankService
}

// Dashboard handles GET /api/auth/dashboard.
// It resolves the authenticated client from the verified claims and returns
// `{client, accounts, cards}`.
func (h *BankHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authenticatedClientID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	client, err := h.AuthService.ClientByID(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.BankService.Dashboard(r.Context(), client)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transfer handles POST /api/transactions/transfer.
// On success it responds `{message}` with 200; business rejections carry the
// reason in the same envelope with a non-2xx status.
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authenticatedClientID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.BankService.Transfer(r.Context(), clientID, req, r.Header.Get("Idempotency-Key")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "transfer completed successfully")
}

// Payment handles POST /api/payments.
func (h *BankHandler) Payment(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authenticatedClientID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.BankService.Payment(r.Context(), clientID, req, r.Header.Get("Idempotency-Key")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "payment completed successfully")
}

// History handles GET /api/transactions/history/{accountID}.
// The account must belong to the authenticated client.
func (h *BankHandler) History(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authenticatedClientID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid account id")
		return
	}

	entries, err := h.BankService.History(r.Context(), clientID, accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// AdminAccounts handles GET /api/admin/accounts. The admin check happens in
// middleware; this handler only renders the listing.
func (h *BankHandler) AdminAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.BankService.AllAccounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if accounts == nil {
		accounts = []models.AdminAccount{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func authenticatedClientID(r *http.Request) (int64, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return 0, false
	}
	id, err := claims.ClientID()
	if err != nil {
		return 0, false
	}
	return id, true
}
