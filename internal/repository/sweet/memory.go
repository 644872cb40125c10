package sweet

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sweetshop/internal/domain"
)

type memoryRepo struct {
	mu        sync.Mutex
	sweets    map[string]domain.Sweet
	purchases []domain.Purchase
	now       func() time.Time
}

// NewMemory returns a process-local Repository for development and tests.
func NewMemory() Repository {
	return &memoryRepo{sweets: make(map[string]domain.Sweet), now: time.Now}
}

func (r *memoryRepo) sortedLocked(match func(domain.Sweet) bool) []domain.Sweet {
	out := []domain.Sweet{}
	for _, s := range r.sweets {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(func(domain.Sweet) bool { return true }), nil
}

func (r *memoryRepo) Search(_ context.Context, f domain.SearchFilter) ([]domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(f.Match), nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) nameTakenLocked(name, exceptID string) bool {
	for id, s := range r.sweets {
		if id != exceptID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func fromInput(id string, in domain.SweetInput) domain.Sweet {
	return domain.Sweet{
		ID:          id,
		Name:        in.Name,
		Category:    in.Category,
		Price:       domain.PriceFromCents(domain.PriceCents(in.Price)),
		Quantity:    in.Quantity,
		Description: in.Description,
	}
}

func (r *memoryRepo) Create(_ context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTakenLocked(in.Name, "") {
		return nil, domain.ErrAlreadyExists
	}
	s := fromInput(uuid.NewString(), in)
	r.sweets[s.ID] = s
	return &s, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sweets[id]; !ok {
		return nil, domain.ErrNotFound
	}
	if r.nameTakenLocked(in.Name, id) {
		return nil, domain.ErrAlreadyExists
	}
	s := fromInput(id, in)
	r.sweets[id] = s
	return &s, nil
}

func (r *memoryRepo) UpsertByName(_ context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	for existing, s := range r.sweets {
		if strings.EqualFold(s.Name, in.Name) {
			id = existing
			in.Name = s.Name
			break
		}
	}
	s := fromInput(id, in)
	r.sweets[id] = s
	return &s, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sweets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sweets, id)
	for i := range r.purchases {
		if r.purchases[i].SweetID == id {
			r.purchases[i].SweetID = ""
		}
	}
	return nil
}

func (r *memoryRepo) Restock(_ context.Context, id string, amount int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.Quantity += amount
	r.sweets[id] = s
	return &s, nil
}

func (r *memoryRepo) Purchase(_ context.Context, userID, sweetID string) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[sweetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.Quantity <= 0 {
		return nil, domain.ErrOutOfStock
	}
	s.Quantity--
	r.sweets[sweetID] = s

	p := domain.Purchase{
		ID:          uuid.NewString(),
		UserID:      userID,
		SweetID:     sweetID,
		SweetName:   s.Name,
		Category:    s.Category,
		Price:       s.Price,
		PurchasedAt: r.now().UTC(),
	}
	r.purchases = append(r.purchases, p)
	return &p, nil
}

func (r *memoryRepo) ListPurchases(_ context.Context, userID string) ([]domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Purchase{}
	for i := len(r.purchases) - 1; i >= 0; i-- {
		if r.purchases[i].UserID == userID {
			out = append(out, r.purchases[i])
		}
	}
	return out, nil
}
