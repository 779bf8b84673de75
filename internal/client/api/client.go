// Package api is the HTTP client for the banking backend. It speaks the
// backend's JSON contract and turns non-2xx responses into typed errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/NovaBank/internal/models"
)

// Error is a response the backend rejected. Message carries the server's
// human-readable explanation.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server rejected request: %d %s", e.Status, e.Message)
}

// IsAuth reports whether the rejection means the credential is no longer
// accepted.
func (e *Error) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client talks to the banking backend over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// New returns a Client for the backend at baseURL. A nil httpClient gets a
// default with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{http: httpClient, baseURL: baseURL}
}

// Register creates a new client account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", "", req, nil)
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", "", req, &resp); err != nil {
		return models.LoginResponse{}, err
	}
	return resp, nil
}

// Dashboard fetches the caller's profile, accounts and cards.
func (c *Client) Dashboard(ctx context.Context, token string) (models.DashboardResponse, error) {
	var resp models.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/dashboard", token, "", nil, &resp); err != nil {
		return models.DashboardResponse{}, err
	}
	return resp, nil
}

// Transfer submits a transfer between accounts. Each call carries a fresh
// idempotency key so the backend can reject accidental replays.
func (c *Client) Transfer(ctx context.Context, token string, req models.TransferRequest) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/transactions/transfer", token, uuid.NewString(), req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Payment submits a bill payment to an external entity.
func (c *Client) Payment(ctx context.Context, token string, req models.PaymentRequest) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/payments", token, uuid.NewString(), req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// History fetches one account's transaction history, newest first.
func (c *Client) History(ctx context.Context, token string, accountID int64) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	path := fmt.Sprintf("/api/transactions/history/%d", accountID)
	if err := c.do(ctx, http.MethodGet, path, token, "", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AdminAccounts fetches the cross-client account listing. Requires a
// privileged credential.
func (c *Client) AdminAccounts(ctx context.Context, token string) ([]models.AdminAccount, error) {
	var accounts []models.AdminAccount
	if err := c.do(ctx, http.MethodGet, "/api/admin/accounts", token, "", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// do sends one request and decodes the response. Non-2xx responses are
// returned as *Error with the server's message.
func (c *Client) do(ctx context.Context, method, path, token, idemKey string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg models.MessageResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
