// Package credstore persists the bearer credential and the last-known
// profile snapshot on disk. It is the only client component that touches
// durable storage; everything else goes through it.
package credstore

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/atinyakov/NovaBank/internal/models"
)

// Store is a file-backed credential store.
type Store struct {
	path string
	mu   sync.Mutex
}

type persisted struct {
	Token   string                `json:"token"`
	Profile *models.ClientProfile `json:"profile,omitempty"`
}

// New returns a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Save stores the bearer token and profile snapshot, overwriting any prior
// value. The file is created with owner-only permissions.
func (s *Store) Save(token string, profile *models.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(persisted{Token: token, Profile: profile})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load returns the stored token and profile snapshot. A missing file is not
// an error: it returns empty values.
func (s *Store) Load() (string, *models.ClientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, err
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return "", nil, err
	}
	return p.Token, p.Profile, nil
}

// Clear removes the stored credential and profile snapshot. Clearing an
// already-empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
