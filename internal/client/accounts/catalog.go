// Package accounts caches the dashboard snapshot for the active session.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/api"
	"github.com/atinyakov/NovaBank/internal/client/session"
	"github.com/atinyakov/NovaBank/internal/models"
)

var (
	// ErrUnauthorized means the backend no longer accepts the credential.
	ErrUnauthorized = errors.New("credential rejected")
	// ErrUnreachable means the backend could not produce a snapshot.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrMalformed means the backend's payload could not be decoded.
	ErrMalformed = errors.New("malformed snapshot payload")
)

// dashboardFetcher is the slice of the API client the catalog needs.
type dashboardFetcher interface {
	Dashboard(ctx context.Context, token string) (models.DashboardResponse, error)
}

// Catalog holds the latest dashboard snapshot. The snapshot is fetched
// wholesale and remembers which credential produced it, so a session
// change implicitly invalidates the cache.
type Catalog struct {
	api  dashboardFetcher
	auth *session.Authority
	log  *zap.Logger

	mu            sync.Mutex
	snapshot      *models.DashboardResponse
	snapshotToken string
}

// NewCatalog returns an empty Catalog tied to the session authority.
func NewCatalog(api dashboardFetcher, auth *session.Authority, log *zap.Logger) *Catalog {
	return &Catalog{api: api, auth: auth, log: log}
}

// Refresh fetches a fresh snapshot for the current session. A credential
// rejection invalidates the session and returns ErrUnauthorized; on any
// failure the previous snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) (*models.DashboardResponse, error) {
	token, ok := c.auth.BearerToken()
	if !ok {
		return nil, ErrUnauthorized
	}

	snapshot, err := c.api.Dashboard(ctx, token)
	if err != nil {
		var apiErr *api.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.IsAuth():
			c.log.Warn("credential rejected during refresh", zap.Int("status", apiErr.Status))
			c.auth.Invalidate()
			return nil, ErrUnauthorized
		case errors.As(err, &apiErr):
			c.log.Warn("refresh rejected", zap.Int("status", apiErr.Status), zap.String("message", apiErr.Message))
			return nil, ErrUnreachable
		case isDecodeError(err):
			c.log.Warn("undecodable snapshot payload", zap.Error(err))
			return nil, ErrMalformed
		default:
			c.log.Warn("refresh failed", zap.Error(err))
			return nil, ErrUnreachable
		}
	}

	c.mu.Lock()
	c.snapshot = &snapshot
	c.snapshotToken = token
	c.mu.Unlock()
	return &snapshot, nil
}

// Cached returns the last snapshot, or nil when none is held or the
// session has changed since it was fetched.
func (c *Catalog) Cached() *models.DashboardResponse {
	token, ok := c.auth.BearerToken()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil || !ok || token != c.snapshotToken {
		return nil
	}
	return c.snapshot
}

// AccountByID returns the cached account with the given id.
func (c *Catalog) AccountByID(id int64) (models.Account, bool) {
	snapshot := c.Cached()
	if snapshot == nil {
		return models.Account{}, false
	}
	for _, account := range snapshot.Accounts {
		if account.ID == id {
			return account, true
		}
	}
	return models.Account{}, false
}

// AccountByNumber returns the cached account with the given number.
func (c *Catalog) AccountByNumber(number string) (models.Account, bool) {
	snapshot := c.Cached()
	if snapshot == nil {
		return models.Account{}, false
	}
	for _, account := range snapshot.Accounts {
		if account.AccountNumber == number {
			return account, true
		}
	}
	return models.Account{}, false
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
