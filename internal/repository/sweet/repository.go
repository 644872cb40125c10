package sweet

import (
	"context"

	"sweetshop/internal/domain"
)

// Repository persists the catalog and the purchases made against it.
type Repository interface {
	List(ctx context.Context) ([]domain.Sweet, error)
	Search(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error)
	GetByID(ctx context.Context, id string) (*domain.Sweet, error)
	Create(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
	Update(ctx context.Context, id string, in domain.SweetInput) (*domain.Sweet, error)
	// UpsertByName creates the sweet or overwrites the one with the same
	// (case-insensitive) name.
	UpsertByName(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, amount int) (*domain.Sweet, error)
	// Purchase takes one unit off the shelf and records it for userID in one step.
	// It fails with domain.ErrOutOfStock when nothing is left.
	Purchase(ctx context.Context, userID, sweetID string) (*domain.Purchase, error)
	// ListPurchases returns userID's purchases, newest first.
	ListPurchases(ctx context.Context, userID string) ([]domain.Purchase, error)
}
