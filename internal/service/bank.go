package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/repository"
)

var (
	// ErrInvalidAmount is returned when the amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSameAccount is returned when a transfer names the same account on
	// both sides.
	ErrSameAccount = errors.New("cannot transfer funds to the same account")
	// ErrSenderNotFound is returned when the sender account does not exist.
	ErrSenderNotFound = errors.New("sender account not found")
	// ErrReceiverNotFound is returned when the receiver account does not exist.
	ErrReceiverNotFound = errors.New("receiver account not found")
	// ErrForbiddenAccount is returned when the sender account is not owned
	// by the authenticated client.
	ErrForbiddenAccount = errors.New("account does not belong to the authenticated client")
	// ErrDuplicateRequest is returned when an idempotency key was already
	// consumed by a prior submission.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// LedgerRepository defines the persistence operations needed by the BankService.
type LedgerRepository interface {
	// AccountsByClient retrieves all accounts owned by the client.
	AccountsByClient(ctx context.Context, clientID int64) ([]models.Account, error)
	// CardsByClient retrieves all cards owned by the client.
	CardsByClient(ctx context.Context, clientID int64) ([]models.Card, error)
	// AccountByID fetches a single account by its primary key.
	AccountByID(ctx context.Context, id int64) (models.Account, error)
	// AccountByNumber fetches a single account by its account number.
	AccountByNumber(ctx context.Context, number string) (models.Account, error)
	// AllAccounts retrieves every account with its owner's name.
	AllAccounts(ctx context.Context) ([]models.AdminAccount, error)
	// TransactionsByAccount retrieves the account's transactions, newest first.
	TransactionsByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error)
	// Transfer atomically moves amount between the two accounts.
	Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string) error
	// RecordPayment atomically debits the sender and records the payment.
	RecordPayment(ctx context.Context, p models.PaymentRequest) error
	// ReserveIdempotencyKey claims a key, returning false if already used.
	ReserveIdempotencyKey(ctx context.Context, key string) (bool, error)
}

// BankService implements dashboard assembly and funds-movement business logic.
type BankService struct {
	// repo is the underlying persistence repository.
	repo LedgerRepository
}

// NewBankService constructs a BankService with the provided LedgerRepository.
func NewBankService(repo LedgerRepository) *BankService {
	return &BankService{repo: repo}
}

// Dashboard assembles the authenticated client's profile, accounts, and cards.
func (s *BankService) Dashboard(ctx context.Context, client models.ClientProfile) (models.DashboardResponse, error) {
	accounts, err := s.repo.AccountsByClient(ctx, client.ID)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	cards, err := s.repo.CardsByClient(ctx, client.ID)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	return models.DashboardResponse{Client: client, Accounts: accounts, Cards: cards}, nil
}

// Transfer validates and executes a funds transfer on behalf of clientID.
// The receiver may be named by account ID or account number. idemKey, when
// non-empty, guards against duplicate submission of the same request.
//
// Validation order matches the public contract: required fields, amount,
// receiver resolution, sender existence and ownership, same-account, then
// the atomic movement (which itself reports insufficient funds).
func (s *BankService) Transfer(ctx context.Context, clientID int64, req models.TransferRequest, idemKey string) error {
	if req.SenderAccountID == 0 || (req.ReceiverAccountID == 0 && req.ReceiverAccountNumber == "") {
		return ErrMissingFields
	}
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	receiverID := req.ReceiverAccountID
	if receiverID == 0 {
		receiver, err := s.repo.AccountByNumber(ctx, req.ReceiverAccountNumber)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrReceiverNotFound
		}
		if err != nil {
			return err
		}
		receiverID = receiver.ID
	}

	sender, err := s.repo.AccountByID(ctx, req.SenderAccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrSenderNotFound
	}
	if err != nil {
		return err
	}
	if sender.ClientID != clientID {
		return ErrForbiddenAccount
	}

	if sender.ID == receiverID {
		return ErrSameAccount
	}

	if err := s.reserve(ctx, idemKey); err != nil {
		return err
	}

	if err := s.repo.Transfer(ctx, sender.ID, receiverID, req.Amount, req.Description); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrReceiverNotFound
		}
		return err
	}
	return nil
}

// Payment validates and executes a bill payment on behalf of clientID.
func (s *BankService) Payment(ctx context.Context, clientID int64, req models.PaymentRequest, idemKey string) error {
	if req.PaymentEntityName == "" || req.ReferenceNumber == "" {
		return ErrMissingFields
	}
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	sender, err := s.repo.AccountByID(ctx, req.SenderAccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrSenderNotFound
	}
	if err != nil {
		return err
	}
	if sender.ClientID != clientID {
		return ErrForbiddenAccount
	}

	if err := s.reserve(ctx, idemKey); err != nil {
		return err
	}

	return s.repo.RecordPayment(ctx, req)
}

// History returns the transactions of one of the client's accounts, tagged
// sent or received from that account's perspective, newest first. The
// account must exist and belong to clientID.
func (s *BankService) History(ctx context.Context, clientID, accountID int64) ([]models.HistoryEntry, error) {
	account, err := s.repo.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.ClientID != clientID {
		return nil, ErrForbiddenAccount
	}

	transactions, err := s.repo.TransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(transactions))
	for _, tr := range transactions {
		direction := models.TransactionReceived
		if tr.SenderAccountID == accountID {
			direction = models.TransactionSent
		}
		entries = append(entries, models.HistoryEntry{Transaction: tr, Type: direction})
	}
	return entries, nil
}

// AllAccounts returns every account for the administrative listing.
func (s *BankService) AllAccounts(ctx context.Context) ([]models.AdminAccount, error) {
	return s.repo.AllAccounts(ctx)
}

func (s *BankService) reserve(ctx context.Context, idemKey string) error {
	if idemKey == "" {
		return nil
	}
	fresh, err := s.repo.ReserveIdempotencyKey(ctx, idemKey)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if !fresh {
		return ErrDuplicateRequest
	}
	return nil
}
