// Package repository provides persistence implementations for the NovaBank
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/NovaBank/internal/models"
)

// ErrClientNotFound is returned when no client matches the lookup.
var ErrClientNotFound = errors.New("client not found")

// PostgresAuthRepository implements client-identity operations using a
// PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the
// given database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// EmailExists checks whether a client with the specified email exists.
// It returns true if the client exists, false otherwise.
// If an error occurs during the query, it is returned.
func (r *PostgresAuthRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// CreateClient inserts a new client record and returns its generated ID.
// passwordHash must already be hashed; this layer never sees plaintext.
func (r *PostgresAuthRepository) CreateClient(ctx context.Context, c models.ClientProfile, passwordHash string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO clients (full_name, email, phone_number, cip, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.FullName, c.Email, c.PhoneNumber, c.CIP, passwordHash, c.IsAdmin,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return id, nil
}

// ClientByEmail fetches a client profile and password hash by email.
// Returns ErrClientNotFound when no row matches.
func (r *PostgresAuthRepository) ClientByEmail(ctx context.Context, email string) (models.ClientProfile, string, error) {
	var c models.ClientProfile
	var hash string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone_number, cip, password_hash, is_admin
		  FROM clients WHERE email = $1
	`, email).Scan(&c.ID, &c.FullName, &c.Email, &c.PhoneNumber, &c.CIP, &hash, &c.IsAdmin)
	if err == sql.ErrNoRows {
		return models.ClientProfile{}, "", ErrClientNotFound
	}
	if err != nil {
		return models.ClientProfile{}, "", fmt.Errorf("ClientByEmail: %w", err)
	}
	return c, hash, nil
}

// ClientByID fetches a client profile by its primary key.
// Returns ErrClientNotFound when no row matches.
func (r *PostgresAuthRepository) ClientByID(ctx context.Context, id int64) (models.ClientProfile, error) {
	var c models.ClientProfile
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone_number, cip, is_admin
		  FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.FullName, &c.Email, &c.PhoneNumber, &c.CIP, &c.IsAdmin)
	if err == sql.ErrNoRows {
		return models.ClientProfile{}, ErrClientNotFound
	}
	if err != nil {
		return models.ClientProfile{}, fmt.Errorf("ClientByID: %w", err)
	}
	return c, nil
}
