// Package session owns the storefront's bearer token and the identity decoded from it.
package session

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"sweetshop/internal/credential"
	"sweetshop/internal/domain"
	"sweetshop/internal/logging"
)

// Status is the session lifecycle state.
type Status int

const (
	// LoggedOut: no token.
	LoggedOut Status = iota
	// Pending: a token is held but its identity has not been decoded yet.
	Pending
	// Authenticated: token and decoded identity are both present.
	Authenticated
)

func (s Status) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a point-in-time view of the session.
type State struct {
	Status   Status
	Token    string
	Identity *domain.Identity
}

// Store holds the session. Identity is non-nil iff the token is non-empty and decoded.
type Store struct {
	mu       sync.RWMutex
	creds    credential.Store
	decoder  Decoder
	logger   logrus.FieldLogger
	token    string
	identity *domain.Identity
	// dirty marks a token change that has not been through Reconcile yet.
	dirty bool
}

// New hydrates a Store from the persisted credential. A hydrated token starts Pending
// until the first Reconcile.
func New(creds credential.Store, decoder Decoder, logger logrus.FieldLogger) *Store {
	s := &Store{
		creds:   creds,
		decoder: decoder,
		logger:  logging.OrDiscard(logger),
	}
	tok, err := creds.Load()
	if err != nil {
		s.logger.WithError(err).Warn("session: could not read persisted token")
	}
	if tok != "" {
		s.token = tok
		s.dirty = true
		s.logger.Debug("session: hydrated token from storage")
	}
	return s
}

// State returns the current session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{Token: s.token}
	switch {
	case s.token == "":
		st.Status = LoggedOut
	case s.identity == nil:
		st.Status = Pending
	default:
		st.Status = Authenticated
		id := *s.identity
		st.Identity = &id
	}
	return st
}

// Login persists token and decodes it. On decode success the identity is visible to
// any read after Login returns. A token that fails to decode is held as Pending and
// discarded by the next Reconcile. The returned error only reports persistence failures.
func (s *Store) Login(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	persistErr := s.creds.Save(token)
	if persistErr != nil {
		s.logger.WithError(persistErr).Warn("session: persist token failed")
	}
	s.token = token
	s.identity = nil
	s.dirty = true

	identity, err := s.decoder.Decode(token)
	if err != nil {
		s.logger.WithError(err).Warn("session: login token could not be decoded")
	} else {
		s.identity = identity
		s.dirty = false
		s.logger.WithFields(logrus.Fields{"user_id": identity.ID, "role": identity.Role}).Info("session: logged in")
	}
	if persistErr != nil {
		return fmt.Errorf("persist token: %w", persistErr)
	}
	return nil
}

// Logout clears the token and identity in memory and in storage. Safe to repeat.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

func (s *Store) logoutLocked() {
	if err := s.creds.Clear(); err != nil {
		s.logger.WithError(err).Warn("session: clear persisted token failed")
	}
	if s.token != "" {
		s.logger.Info("session: logged out")
	}
	s.token = ""
	s.identity = nil
	s.dirty = false
}

// Reconcile validates a token change since the previous call: an undecodable token
// logs the session out, a decodable one gains its identity. It returns the resulting
// state.
func (s *Store) Reconcile() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return s.stateLocked()
	}
	s.dirty = false
	if s.token == "" {
		s.identity = nil
		return s.stateLocked()
	}
	identity, err := s.decoder.Decode(s.token)
	if err != nil {
		s.logger.WithError(err).Warn("session: token invalid, clearing")
		s.logoutLocked()
		return s.stateLocked()
	}
	s.identity = identity
	return s.stateLocked()
}
