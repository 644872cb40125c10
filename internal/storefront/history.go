package storefront

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
)

// History is the purchase history page.
type History struct {
	api    HistoryAPI
	logger logrus.FieldLogger

	purchases []domain.Purchase
	Error     string
}

// Load fetches the caller's purchases. A failure empties the page and sets Error.
func (h *History) Load(ctx context.Context) error {
	purchases, err := h.api.ListPurchases(ctx)
	if err != nil {
		h.purchases = nil
		h.Error = "Purchase history is not available right now. Please check back later."
		h.logger.WithError(err).Warn("history: load failed")
		return err
	}
	h.Error = ""
	h.purchases = purchases
	return nil
}

// Purchases returns the loaded history.
func (h *History) Purchases() []domain.Purchase {
	out := make([]domain.Purchase, len(h.purchases))
	copy(out, h.purchases)
	return out
}

// TotalSpent sums the prices of all loaded purchases.
func (h *History) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, p := range h.purchases {
		total = total.Add(p.Price)
	}
	return total
}
