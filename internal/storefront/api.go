// Package storefront holds the page controllers of the storefront. Controllers keep
// view state and talk to the backend through narrow interfaces; rendering lives in the
// shell.
package storefront

import (
	"context"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/domain"
)

// AuthAPI is what the login and registration forms need.
type AuthAPI interface {
	Login(ctx context.Context, creds apiclient.Credentials) (string, error)
	Register(ctx context.Context, reg apiclient.Registration) (string, error)
}

// CatalogAPI is what the catalog page needs.
type CatalogAPI interface {
	ListSweets(ctx context.Context) ([]domain.Sweet, error)
	SearchSweets(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error)
	PurchaseSweet(ctx context.Context, id string) error
}

// AdminAPI is what the inventory page needs.
type AdminAPI interface {
	ListSweets(ctx context.Context) ([]domain.Sweet, error)
	CreateSweet(ctx context.Context, in domain.SweetInput) (domain.Sweet, error)
	UpdateSweet(ctx context.Context, id string, in domain.SweetInput) (domain.Sweet, error)
	DeleteSweet(ctx context.Context, id string) error
	RestockSweet(ctx context.Context, id string, amount int) (domain.Sweet, error)
}

// HistoryAPI is what the purchase history page needs.
type HistoryAPI interface {
	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
}

// API is the full backend surface; *apiclient.Client implements it.
type API interface {
	AuthAPI
	CatalogAPI
	AdminAPI
	HistoryAPI
}

var _ API = (*apiclient.Client)(nil)

// ValidationError is a form problem caught before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
