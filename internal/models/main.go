// Package models defines the core data structures shared by the NovaBank
// server and client: clients, accounts, cards, transactions, and the JSON
// request/response bodies of the HTTP contract.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientProfile represents a bank client as exposed over the API.
type ClientProfile struct {
	// ID is the unique identifier of the client.
	ID int64 `json:"id"`
	// FullName is the client's legal name.
	FullName string `json:"full_name"`
	// Email is the unique login email of the client.
	Email string `json:"email"`
	// PhoneNumber is the client's contact phone.
	PhoneNumber string `json:"phone_number"`
	// CIP is the client's personal identity number.
	CIP string `json:"cip"`
	// IsAdmin marks administrative clients.
	IsAdmin bool `json:"is_admin"`
}

// Account represents a client's balance-holding account.
type Account struct {
	// ID is the unique identifier of the account.
	ID int64 `json:"id"`
	// ClientID references the owning client.
	ClientID int64 `json:"client_id"`
	// AccountNumber is the human-facing account number (e.g. "001-1").
	AccountNumber string `json:"account_number"`
	// AccountType is the kind of account ("checking", "savings", ...).
	AccountType string `json:"account_type"`
	// Balance is the current balance. The backend keeps it non-negative,
	// but consumers must not assume that.
	Balance decimal.Decimal `json:"balance"`
}

// Account type values accepted by the backend.
const (
	AccountChecking = "checking"
	AccountSavings  = "savings"
)

// Card represents a payment card linked to a client.
type Card struct {
	ID             int64  `json:"id"`
	ClientID       int64  `json:"client_id"`
	CardNumber     string `json:"card_number"`
	CardType       string `json:"card_type"`
	ExpirationDate string `json:"expiration_date"`
}

// AdminAccount is an account row in the administrative listing,
// joined with the owning client's name.
type AdminAccount struct {
	ID             int64           `json:"id"`
	ClientID       int64           `json:"client_id"`
	ClientFullName string          `json:"client_full_name"`
	AccountNumber  string          `json:"account_number"`
	AccountType    string          `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
}

// Transaction is a recorded funds movement between two accounts.
type Transaction struct {
	ID                int64           `json:"id"`
	SenderAccountID   int64           `json:"sender_account_id"`
	ReceiverAccountID int64           `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Transaction directions as seen from one account's side of the movement.
const (
	TransactionSent     = "sent"
	TransactionReceived = "received"
)

// HistoryEntry is a transaction in an account's history, tagged with the
// direction of the movement relative to that account.
type HistoryEntry struct {
	Transaction
	Type string `json:"type"`
}

// RegisterRequest is the JSON payload for POST /auth/register.
type RegisterRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CIP         string `json:"cip"`
	Password    string `json:"password"`
}

// LoginRequest is the JSON payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /auth/login.
type LoginResponse struct {
	// Token is the bearer credential for subsequent protected calls.
	Token string `json:"token"`
	// Client is a snapshot of the authenticated client's profile.
	Client ClientProfile `json:"client"`
}

// DashboardResponse is the success body of GET /api/auth/dashboard.
type DashboardResponse struct {
	Client   ClientProfile `json:"client"`
	Accounts []Account     `json:"accounts"`
	Cards    []Card        `json:"cards"`
}

// TransferRequest is the JSON payload for POST /api/transactions/transfer.
// Either ReceiverAccountID or ReceiverAccountNumber identifies the receiver.
type TransferRequest struct {
	SenderAccountID       int64           `json:"sender_account_id"`
	ReceiverAccountID     int64           `json:"receiver_account_id,omitempty"`
	ReceiverAccountNumber string          `json:"receiver_account_number,omitempty"`
	ReceiverName          string          `json:"receiver_name,omitempty"`
	ReceiverBank          string          `json:"receiver_bank,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description,omitempty"`
}

// PaymentRequest is the JSON payload for POST /api/payments.
type PaymentRequest struct {
	SenderAccountID   int64           `json:"sender_account_id"`
	PaymentEntityName string          `json:"payment_entity_name"`
	Amount            decimal.Decimal `json:"amount"`
	ReferenceNumber   string          `json:"reference_number"`
	Description       string          `json:"description,omitempty"`
}

// MessageResponse is the `{message}` envelope used for success confirmations
// and for every non-2xx error body.
type MessageResponse struct {
	Message string `json:"message"`
}
