// Package service provides business-logic services for client identity and
// funds movement, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/repository"
	"github.com/atinyakov/NovaBank/internal/token"
)

var (
	// ErrMissingFields is returned when a registration or login payload
	// lacks required fields.
	ErrMissingFields = errors.New("missing required fields")
	// ErrEmailTaken is returned when the registration email is already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on unknown email or wrong password.
	// Deliberately identical for both so login probing reveals nothing.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// EmailExists returns true if a client with the given email exists.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateClient creates a new client record and returns its ID.
	CreateClient(ctx context.Context, c models.ClientProfile, passwordHash string) (int64, error)
	// ClientByEmail fetches a client profile and password hash by email.
	ClientByEmail(ctx context.Context, email string) (models.ClientProfile, string, error)
	// ClientByID fetches a client profile by ID.
	ClientByID(ctx context.Context, id int64) (models.ClientProfile, error)
}

// AccountCreator opens accounts for newly registered clients.
type AccountCreator interface {
	CreateAccount(ctx context.Context, clientID int64, number, accountType string, balance decimal.Decimal) (int64, error)
}

// AuthService implements registration and login by delegating to an
// AuthRepository and issuing bearer tokens on success.
type AuthService struct {
	repo     AuthRepository
	accounts AccountCreator
	tokens   *token.Provider
}

// NewAuthService constructs a new AuthService using the provided repository,
// account creator, and token provider.
func NewAuthService(repo AuthRepository, accounts AccountCreator, tokens *token.Provider) *AuthService {
	return &AuthService{repo: repo, accounts: accounts, tokens: tokens}
}

// Register creates a new client with a hashed password and opens an initial
// checking account for it. Returns ErrMissingFields or ErrEmailTaken on
// invalid input.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.ClientProfile, error) {
	if req.FullName == "" || req.Email == "" || req.PhoneNumber == "" || req.CIP == "" || req.Password == "" {
		return models.ClientProfile{}, ErrMissingFields
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return models.ClientProfile{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.ClientProfile{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.ClientProfile{}, fmt.Errorf("hash password: %w", err)
	}

	client := models.ClientProfile{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		CIP:         req.CIP,
	}
	id, err := s.repo.CreateClient(ctx, client, string(hash))
	if err != nil {
		return models.ClientProfile{}, err
	}
	client.ID = id

	number := fmt.Sprintf("%03d-1", id)
	if _, err := s.accounts.CreateAccount(ctx, id, number, models.AccountChecking, decimal.Zero); err != nil {
		return models.ClientProfile{}, fmt.Errorf("open initial account: %w", err)
	}

	return client, nil
}

// Login verifies the email/password pair and issues a bearer token.
// Returns ErrInvalidCredentials when either is wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	if email == "" || password == "" {
		return models.LoginResponse{}, ErrMissingFields
	}

	client, hash, err := s.repo.ClientByEmail(ctx, email)
	if errors.Is(err, repository.ErrClientNotFound) {
		return models.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	signed, _, err := s.tokens.Issue(client)
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return models.LoginResponse{Token: signed, Client: client}, nil
}

// ClientByID exposes profile lookup for authenticated requests.
func (s *AuthService) ClientByID(ctx context.Context, id int64) (models.ClientProfile, error) {
	return s.repo.ClientByID(ctx, id)
}
