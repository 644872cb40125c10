package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"sweetshop/internal/domain"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sweetPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	// Price is the exact decimal, written as a bare JSON number.
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Description string      `json:"description"`
}

func toPayload(in domain.SweetInput) sweetPayload {
	return sweetPayload{
		Name:        in.Name,
		Category:    in.Category,
		Price:       json.Number(in.Price.String()),
		Quantity:    in.Quantity,
		Description: in.Description,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register creates an account and returns the backend's confirmation message.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.Do(ctx, http.MethodPost, "/auth/register", nil, reg, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ListSweets fetches the whole catalog.
func (c *Client) ListSweets(ctx context.Context) ([]domain.Sweet, error) {
	var out []domain.Sweet
	if err := c.Do(ctx, http.MethodGet, "/sweets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchSweets runs a backend search. Empty filter fields are not sent.
func (c *Client) SearchSweets(ctx context.Context, f domain.SearchFilter) ([]domain.Sweet, error) {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice.Valid {
		q.Set("minPrice", f.MinPrice.Decimal.String())
	}
	if f.MaxPrice.Valid {
		q.Set("maxPrice", f.MaxPrice.Decimal.String())
	}
	var out []domain.Sweet
	if err := c.Do(ctx, http.MethodGet, "/sweets/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSweet adds a sweet (admin).
func (c *Client) CreateSweet(ctx context.Context, in domain.SweetInput) (domain.Sweet, error) {
	var out domain.Sweet
	err := c.Do(ctx, http.MethodPost, "/sweets", nil, toPayload(in), &out)
	return out, err
}

// UpdateSweet replaces the editable fields of a sweet (admin).
func (c *Client) UpdateSweet(ctx context.Context, id string, in domain.SweetInput) (domain.Sweet, error) {
	var out domain.Sweet
	err := c.Do(ctx, http.MethodPut, "/sweets/"+url.PathEscape(id), nil, toPayload(in), &out)
	return out, err
}

// DeleteSweet removes a sweet (admin).
func (c *Client) DeleteSweet(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/sweets/"+url.PathEscape(id), nil, nil, nil)
}

// PurchaseSweet buys a single unit.
func (c *Client) PurchaseSweet(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/purchase", nil, nil, nil)
}

// RestockSweet adds amount units (admin).
func (c *Client) RestockSweet(ctx context.Context, id string, amount int) (domain.Sweet, error) {
	var out domain.Sweet
	in := struct {
		Amount int `json:"amount"`
	}{amount}
	err := c.Do(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/restock", nil, in, &out)
	return out, err
}

// ListPurchases returns the caller's purchase history.
func (c *Client) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	var out []domain.Purchase
	if err := c.Do(ctx, http.MethodGet, "/purchases", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Purchase{}
	}
	return out, nil
}
