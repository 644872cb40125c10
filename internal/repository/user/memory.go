package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sweetshop/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]domain.User
	email map[string]string
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{byID: make(map[string]domain.User), email: make(map[string]string)}
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := r.email[key]; taken {
		return nil, domain.ErrAlreadyExists
	}
	u.ID = uuid.NewString()
	u.Email = key
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	r.byID[u.ID] = u
	r.email[key] = u.ID
	return &u, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}
