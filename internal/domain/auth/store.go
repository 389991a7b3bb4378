// internal/domain/auth/store.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
)

// StorageKey is the fixed durable-storage key holding the {token, username} record
const StorageKey = "shopsphere_auth"

// ErrInvalidCredentials is the only login failure callers ever see. Network
// errors and rejected passwords are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator exchanges credentials for an opaque token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// State is a snapshot of the session's authentication
type State struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Token         string `json:"-"`
}

type record struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Store holds one session's authentication state.
//
// Restoration trusts the stored record: a record with both a token and a
// username is treated as a live session without asking the catalog whether
// the token is still valid.
type Store struct {
	storage       storage.Storage
	authenticator Authenticator
	logger        logrus.FieldLogger
	state         State
}

// NewStore restores the authentication state from st
func NewStore(ctx context.Context, st storage.Storage, authenticator Authenticator, logger logrus.FieldLogger) *Store {
	s := &Store{
		storage:       st,
		authenticator: authenticator,
		logger:        logger.WithField("component", "auth"),
	}

	raw, err := st.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).Warn("Failed to restore auth record")
		}
		return s
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.WithError(err).Warn("Discarding malformed auth record")
		return s
	}

	if rec.Token != "" && rec.Username != "" {
		s.state = State{
			Authenticated: true,
			Username:      rec.Username,
			Token:         rec.Token,
		}
	}
	return s
}

// Login authenticates against the catalog and persists the session record.
// Any failure leaves the store unauthenticated and returns ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.authenticator.Login(ctx, username, password)
	if err != nil {
		s.logger.WithError(err).WithField("username", username).Info("Login failed")
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(record{Token: token, Username: username})
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode auth record")
		return ErrInvalidCredentials
	}

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.WithError(err).Error("Failed to persist auth record")
		return ErrInvalidCredentials
	}

	s.state = State{
		Authenticated: true,
		Username:      username,
		Token:         token,
	}
	s.logger.WithField("username", username).Info("User logged in")
	return nil
}

// Logout forgets the session. The in-memory state is reset even when the
// stored record cannot be removed.
func (s *Store) Logout(ctx context.Context) error {
	username := s.state.Username
	s.state = State{}

	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear auth record: %w", err)
	}

	if username != "" {
		s.logger.WithField("username", username).Info("User logged out")
	}
	return nil
}

// State returns the current authentication snapshot
func (s *Store) State() State {
	return s.state
}

// IsAuthenticated reports whether the session is logged in
func (s *Store) IsAuthenticated() bool {
	return s.state.Authenticated
}

// Username returns the logged-in username, empty when logged out
func (s *Store) Username() string {
	return s.state.Username
}
