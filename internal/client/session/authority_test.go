package session

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/credstore"
	"github.com/atinyakov/NovaBank/internal/models"
)

func newTestAuthority(t *testing.T) (*Authority, *credstore.Store) {
	t.Helper()
	store := credstore.New(filepath.Join(t.TempDir(), "credentials.json"))
	return NewAuthority(store, zap.NewNop()), store
}

func TestAuthority_Bootstrap_NoCredential(t *testing.T) {
	auth, _ := newTestAuthority(t)

	session := auth.Bootstrap()
	if session.State != StateAnonymous {
		t.Errorf("expected anonymous, got %v", session.State)
	}
	if _, ok := auth.BearerToken(); ok {
		t.Error("expected no bearer token")
	}
}

func TestAuthority_Bootstrap_ValidCredential(t *testing.T) {
	auth, store := newTestAuthority(t)
	signed := issueToken(t, models.ClientProfile{ID: 9, FullName: "Ana", IsAdmin: true}, time.Hour)
	if err := store.Save(signed, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	session := auth.Bootstrap()
	if session.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", session.State)
	}
	if session.Claims.SubjectID != 9 || !session.Claims.IsPrivileged {
		t.Errorf("unexpected claims: %+v", session.Claims)
	}

	token, ok := auth.BearerToken()
	if !ok || token != signed {
		t.Errorf("BearerToken() = %q, %v", token, ok)
	}
}

func TestAuthority_Bootstrap_ExpiredCredential(t *testing.T) {
	auth, store := newTestAuthority(t)
	signed := issueToken(t, models.ClientProfile{ID: 9}, -time.Minute)
	if err := store.Save(signed, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	session := auth.Bootstrap()
	if session.State != StateAnonymous {
		t.Errorf("expected anonymous, got %v", session.State)
	}

	// The stale credential must be purged from disk.
	stored, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored != "" {
		t.Error("expected expired credential to be cleared from store")
	}
}

func TestAuthority_Bootstrap_GarbageCredential(t *testing.T) {
	auth, store := newTestAuthority(t)
	if err := store.Save("not-a-token", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	session := auth.Bootstrap()
	if session.State != StateAnonymous {
		t.Errorf("expected anonymous, got %v", session.State)
	}

	stored, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored != "" {
		t.Error("expected garbage credential to be cleared from store")
	}
}

func TestAuthority_Establish(t *testing.T) {
	auth, store := newTestAuthority(t)
	auth.Bootstrap()

	profile := &models.ClientProfile{ID: 3, FullName: "Ben Ortiz"}
	signed := issueToken(t, models.ClientProfile{ID: 3, FullName: "Ben Ortiz"}, time.Hour)

	session, err := auth.Establish(signed, profile)
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if session.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", session.State)
	}
	if session.Claims.SubjectID != 3 {
		t.Errorf("unexpected subject %d", session.Claims.SubjectID)
	}

	// The credential must survive a restart.
	stored, storedProfile, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored != signed {
		t.Error("credential not persisted")
	}
	if storedProfile == nil || storedProfile.FullName != "Ben Ortiz" {
		t.Errorf("profile not persisted: %+v", storedProfile)
	}
}

func TestAuthority_Establish_Malformed(t *testing.T) {
	auth, _ := newTestAuthority(t)
	auth.Bootstrap()

	if _, err := auth.Establish("garbage", nil); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if auth.Current().State != StateAnonymous {
		t.Error("failed establish must not change session state")
	}
}

func TestAuthority_Invalidate(t *testing.T) {
	auth, store := newTestAuthority(t)
	signed := issueToken(t, models.ClientProfile{ID: 3}, time.Hour)
	if _, err := auth.Establish(signed, nil); err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	auth.Invalidate()

	if auth.Current().State != StateAnonymous {
		t.Error("expected anonymous after invalidate")
	}
	stored, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored != "" {
		t.Error("expected store to be cleared")
	}

	// Idempotent.
	auth.Invalidate()
	if auth.Current().State != StateAnonymous {
		t.Error("expected anonymous after repeated invalidate")
	}
}

func TestAuthority_StateBeforeBootstrap(t *testing.T) {
	auth, _ := newTestAuthority(t)
	if auth.Current().State != StateUnknown {
		t.Errorf("expected unknown before bootstrap, got %v", auth.Current().State)
	}
}
