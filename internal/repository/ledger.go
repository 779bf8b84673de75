// Package repository provides persistence implementations for the NovaBank
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atinyakov/NovaBank/internal/models"
)

var (
	// ErrAccountNotFound is returned when an account lookup matches no row.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds is returned when a debit would overdraw the
	// sender account.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// PostgresLedgerRepository implements account and funds-movement operations
// against a PostgreSQL database.
type PostgresLedgerRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresLedgerRepository creates a new PostgresLedgerRepository using
// the provided *sql.DB. db must be a valid connection to a PostgreSQL
// instance.
func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{DB: db}
}

// AccountsByClient fetches all accounts owned by the given client.
func (r *PostgresLedgerRepository) AccountsByClient(ctx context.Context, clientID int64) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, client_id, account_number, account_type, balance
		  FROM accounts WHERE client_id = $1 ORDER BY id
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("AccountsByClient: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.ClientID, &a.AccountNumber, &a.AccountType, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CardsByClient fetches all cards owned by the given client.
func (r *PostgresLedgerRepository) CardsByClient(ctx context.Context, clientID int64) ([]models.Card, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, client_id, card_number, card_type, expiration_date
		  FROM cards WHERE client_id = $1 ORDER BY id
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("CardsByClient: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.ClientID, &c.CardNumber, &c.CardType, &c.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// AccountByID fetches a single account by its primary key.
// Returns ErrAccountNotFound when no row matches.
func (r *PostgresLedgerRepository) AccountByID(ctx context.Context, id int64) (models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, client_id, account_number, account_type, balance
		  FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.ClientID, &a.AccountNumber, &a.AccountType, &a.Balance)
	if err == sql.ErrNoRows {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("AccountByID: %w", err)
	}
	return a, nil
}

// AccountByNumber fetches a single account by its account number.
// Returns ErrAccountNotFound when no row matches.
func (r *PostgresLedgerRepository) AccountByNumber(ctx context.Context, number string) (models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, client_id, account_number, account_type, balance
		  FROM accounts WHERE account_number = $1
	`, number).Scan(&a.ID, &a.ClientID, &a.AccountNumber, &a.AccountType, &a.Balance)
	if err == sql.ErrNoRows {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("AccountByNumber: %w", err)
	}
	return a, nil
}

// AllAccounts fetches every account joined with its owner's full name,
// for the administrative listing.
func (r *PostgresLedgerRepository) AllAccounts(ctx context.Context) ([]models.AdminAccount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.client_id, c.full_name, a.account_number, a.account_type, a.balance
		  FROM accounts a JOIN clients c ON a.client_id = c.id
		 ORDER BY a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("AllAccounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AdminAccount
	for rows.Next() {
		var a models.AdminAccount
		if err := rows.Scan(&a.ID, &a.ClientID, &a.ClientFullName, &a.AccountNumber, &a.AccountType, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateAccount inserts a new account for the given client and returns its ID.
func (r *PostgresLedgerRepository) CreateAccount(ctx context.Context, clientID int64, number, accountType string, balance decimal.Decimal) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (client_id, account_number, account_type, balance)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, clientID, number, accountType, balance).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

// Transfer atomically moves amount from the sender to the receiver account
// and records the transaction. Both rows are locked in ID order to avoid
// deadlocks between concurrent opposing transfers. Returns
// ErrAccountNotFound or ErrInsufficientFunds on business failure.
func (r *PostgresLedgerRepository) Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	first, second := senderID, receiverID
	if first > second {
		first, second = second, first
	}

	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range []int64{first, second} {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id,
		).Scan(&balance)
		if err == sql.ErrNoRows {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("lock account %d: %w", id, err)
		}
		balances[id] = balance
	}

	if balances[senderID].LessThan(amount) {
		return ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2`, amount, senderID,
	); err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2`, amount, receiverID,
	); err != nil {
		return fmt.Errorf("credit receiver: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (sender_account_id, receiver_account_id, amount, description)
		VALUES ($1, $2, $3, $4)
	`, senderID, receiverID, amount, description); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordPayment atomically debits the sender account and records the bill
// payment. Returns ErrAccountNotFound or ErrInsufficientFunds on business
// failure.
func (r *PostgresLedgerRepository) RecordPayment(ctx context.Context, p models.PaymentRequest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, p.SenderAccountID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("lock account %d: %w", p.SenderAccountID, err)
	}

	if balance.LessThan(p.Amount) {
		return ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2`, p.Amount, p.SenderAccountID,
	); err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (sender_account_id, payment_entity_name, amount, reference_number, description)
		VALUES ($1, $2, $3, $4, $5)
	`, p.SenderAccountID, p.PaymentEntityName, p.Amount, p.ReferenceNumber, p.Description); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TransactionsByAccount fetches every transaction the account took part in,
// as sender or receiver, newest first.
func (r *PostgresLedgerRepository) TransactionsByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, sender_account_id, receiver_account_id, amount, description, created_at
		  FROM transactions
		 WHERE sender_account_id = $1 OR receiver_account_id = $1
		 ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("TransactionsByAccount: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tr models.Transaction
		if err := rows.Scan(&tr.ID, &tr.SenderAccountID, &tr.ReceiverAccountID, &tr.Amount, &tr.Description, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		transactions = append(transactions, tr)
	}
	return transactions, rows.Err()
}

// ReserveIdempotencyKey claims the given key. It returns true when the key
// was unused, false when a prior request already consumed it.
func (r *PostgresLedgerRepository) ReserveIdempotencyKey(ctx context.Context, key string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key) VALUES ($1) ON CONFLICT DO NOTHING`, key,
	)
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
