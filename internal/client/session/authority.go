// Package session owns the client's authentication state. Every other
// client component asks the session authority who the user is; none of
// them reads the credential store directly.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/credstore"
	"github.com/atinyakov/NovaBank/internal/models"
)

// State describes what the authority currently knows about the user.
type State int

const (
	// StateUnknown means Bootstrap has not completed yet.
	StateUnknown State = iota
	// StateAuthenticated means a live credential is held.
	StateAuthenticated
	// StateAnonymous means no usable credential is held.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the authority's state.
type Session struct {
	State  State
	Token  string
	Claims Claims
}

// Authority resolves and mutates the client's session. All transitions go
// through it so the in-memory state and the credential store never diverge.
type Authority struct {
	store *credstore.Store
	log   *zap.Logger
	now   func() time.Time

	mu      sync.Mutex
	session Session
}

// NewAuthority returns an Authority in the Unknown state, backed by store.
func NewAuthority(store *credstore.Store, log *zap.Logger) *Authority {
	return &Authority{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Bootstrap resolves the initial session from the credential store. A
// missing, undecodable or expired credential resolves to Anonymous, and
// stale credentials are purged from the store. Bootstrap never fails the
// startup path: storage errors degrade to Anonymous.
func (a *Authority) Bootstrap() Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	token, _, err := a.store.Load()
	if err != nil {
		a.log.Warn("failed to load stored credential", zap.Error(err))
		a.session = Session{State: StateAnonymous}
		return a.session
	}
	if token == "" {
		a.session = Session{State: StateAnonymous}
		return a.session
	}

	claims, err := Decode(token)
	if err != nil {
		a.log.Warn("discarding undecodable stored credential")
		_ = a.store.Clear()
		a.session = Session{State: StateAnonymous}
		return a.session
	}
	if claims.Expired(a.now()) {
		a.log.Info("discarding expired credential",
			zap.Time("expired_at", claims.ExpiresAt))
		_ = a.store.Clear()
		a.session = Session{State: StateAnonymous}
		return a.session
	}

	a.session = Session{State: StateAuthenticated, Token: token, Claims: claims}
	return a.session
}

// Establish installs a freshly obtained credential, persists it and moves
// the session to Authenticated. The credential must decode; otherwise the
// session is left untouched.
func (a *Authority) Establish(token string, profile *models.ClientProfile) (Session, error) {
	claims, err := Decode(token)
	if err != nil {
		return Session{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(token, profile); err != nil {
		a.log.Warn("failed to persist credential", zap.Error(err))
	}
	a.session = Session{State: StateAuthenticated, Token: token, Claims: claims}
	a.log.Info("session established",
		zap.Int64("client_id", claims.SubjectID),
		zap.Bool("privileged", claims.IsPrivileged))
	return a.session, nil
}

// Invalidate drops the credential and moves the session to Anonymous.
// Invalidating an already-anonymous session is a no-op.
func (a *Authority) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session.State == StateAnonymous {
		return
	}
	if err := a.store.Clear(); err != nil {
		a.log.Warn("failed to clear credential store", zap.Error(err))
	}
	a.session = Session{State: StateAnonymous}
	a.log.Info("session invalidated")
}

// Current returns a snapshot of the session.
func (a *Authority) Current() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// BearerToken returns the held credential, or false when the session is
// not authenticated.
func (a *Authority) BearerToken() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.State != StateAuthenticated {
		return "", false
	}
	return a.session.Token, true
}
