package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sweet is one catalog item. The backend owns it; clients cache the last fetched snapshot.
type Sweet struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// InStock reports whether at least one unit is available.
func (s Sweet) InStock() bool {
	return s.Quantity > 0
}

// SweetInput carries the editable fields of a sweet.
type SweetInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	Description string
}

// SearchFilter narrows the catalog. Empty strings and invalid bounds are ignored.
type SearchFilter struct {
	Name     string
	Category string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
}

// IsZero reports whether the filter matches everything.
func (f SearchFilter) IsZero() bool {
	return strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.Category) == "" && !f.MinPrice.Valid && !f.MaxPrice.Valid
}

// Match applies the filter to a single sweet: case-insensitive substring on name and
// category, inclusive price bounds.
func (f SearchFilter) Match(s Sweet) bool {
	if name := strings.TrimSpace(f.Name); name != "" {
		if !strings.Contains(strings.ToLower(s.Name), strings.ToLower(name)) {
			return false
		}
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		if !strings.Contains(strings.ToLower(s.Category), strings.ToLower(category)) {
			return false
		}
	}
	if f.MinPrice.Valid && s.Price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && s.Price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	return true
}

// Filter returns the sweets matching f, preserving order.
func (f SearchFilter) Filter(sweets []Sweet) []Sweet {
	out := make([]Sweet, 0, len(sweets))
	for _, s := range sweets {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// PriceFromCents converts a stored cent amount into a price.
func PriceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// PriceCents rounds a price to whole cents for storage.
func PriceCents(price decimal.Decimal) int64 {
	return price.Round(2).Shift(2).IntPart()
}
