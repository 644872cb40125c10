// Package credential persists the raw bearer token between storefront runs.
// Absence of a stored token means logged out.
package credential

import "sync"

// Store holds a single bearer token.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type memoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemory returns a process-local Store, mainly for tests.
func NewMemory(initial string) Store {
	return &memoryStore{token: initial}
}

func (s *memoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memoryStore) Save(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
