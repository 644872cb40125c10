package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records one unit bought by a user. Name, category and price are copied at
// purchase time.
type Purchase struct {
	ID          string          `json:"_id"`
	UserID      string          `json:"userId"`
	SweetID     string          `json:"sweetId"`
	SweetName   string          `json:"sweetName"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	PurchasedAt time.Time       `json:"purchasedAt"`
}
