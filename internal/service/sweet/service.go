package sweet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
	"sweetshop/internal/logging"
	sweetrepo "sweetshop/internal/repository/sweet"
)

// Service applies catalog rules on top of the sweet repository.
type Service struct {
	repo   sweetrepo.Repository
	logger logrus.FieldLogger
}

func New(repo sweetrepo.Repository, logger logrus.FieldLogger) *Service {
	return &Service{repo: repo, logger: logging.OrDiscard(logger)}
}

func (s *Service) List(ctx context.Context) ([]domain.Sweet, error) {
	return s.repo.List(ctx)
}

// Search returns the whole catalog for an empty filter. An inverted price range
// matches nothing.
func (s *Service) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error) {
	if f.IsZero() {
		return s.repo.List(ctx)
	}
	if f.MinPrice.Valid && f.MaxPrice.Valid && f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		return []domain.Sweet{}, nil
	}
	return s.repo.Search(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, in)
	return created, nameTaken(in.Name, err)
}

func (s *Service) Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, in)
	return updated, nameTaken(in.Name, err)
}

// Import creates or overwrites a sweet keyed by name.
func (s *Service) Import(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpsertByName(ctx, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error) {
	if amount <= 0 {
		return nil, domain.Invalid("restock amount must be positive")
	}
	return s.repo.Restock(ctx, id, amount)
}

// Purchase buys a single unit of a sweet on behalf of userID.
func (s *Service) Purchase(ctx context.Context, userID, sweetID string) (*domain.Purchase, error) {
	p, err := s.repo.Purchase(ctx, userID, sweetID)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "sweet_id": sweetID}).Info("sweet purchased")
	return p, nil
}

// History lists userID's purchases, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, userID)
}

func nameTaken(name string, err error) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("a sweet named %q %w", name, domain.ErrAlreadyExists)
	}
	return err
}

func normalize(in domain.SweetInput) (domain.SweetInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "" || in.Category == "":
		return in, domain.Invalid("name and category are required")
	case in.Price.IsNegative():
		return in, domain.Invalid("price cannot be negative")
	case in.Quantity < 0:
		return in, domain.Invalid("quantity cannot be negative")
	}
	in.Price = in.Price.Round(2)
	return in, nil
}
