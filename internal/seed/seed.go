package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/domain"
	"sweetshop/internal/logging"
	authsvc "sweetshop/internal/service/auth"
)

// AdminEmail and AdminPassword are the demo administrator credentials.
const (
	AdminEmail    = "admin@sweetshop.local"
	AdminPassword = "admin123"
)

// SweetImporter creates or overwrites a sweet keyed by name.
type SweetImporter interface {
	Import(ctx context.Context, in domain.SweetInput) (*domain.Sweet, error)
}

// AdminCreator creates the admin account when it is missing.
type AdminCreator interface {
	EnsureAdmin(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
}

type sweetSeed struct {
	Name        string
	Category    string
	Price       string
	Quantity    int
	Description string
}

var demoSweets = []sweetSeed{
	{"Chocolate Truffle", "Chocolate", "2.50", 25, "Dark ganache rolled in cocoa"},
	{"Milk Chocolate Bar", "Chocolate", "1.75", 40, "Creamy classic bar"},
	{"Strawberry Gummies", "Gummies", "1.20", 60, "Soft fruit gummies"},
	{"Sour Worms", "Gummies", "1.10", 0, "Tangy sugar-coated worms"},
	{"Butter Toffee", "Toffee", "3.00", 15, "Slow-cooked butter toffee"},
	{"Rainbow Lollipop", "Candy", "0.80", 50, "Swirled fruit lollipop"},
	{"Pistachio Macaron", "Pastry", "2.20", 12, "Almond shell, pistachio cream"},
	{"Salted Caramel Fudge", "Fudge", "2.75", 8, ""},
}

// Apply creates the admin account and upserts the demo catalog. It is idempotent.
func Apply(ctx context.Context, sweets SweetImporter, admins AdminCreator, logger logrus.FieldLogger) error {
	logger = logging.OrDiscard(logger)

	admin, err := admins.EnsureAdmin(ctx, authsvc.RegisterInput{
		Username: "admin",
		Email:    AdminEmail,
		Password: AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	logger.WithField("email", admin.Email).Info("admin account ready")

	for _, s := range demoSweets {
		_, err := sweets.Import(ctx, domain.SweetInput{
			Name:        s.Name,
			Category:    s.Category,
			Price:       decimal.RequireFromString(s.Price),
			Quantity:    s.Quantity,
			Description: s.Description,
		})
		if err != nil {
			return fmt.Errorf("upsert sweet %s: %w", s.Name, err)
		}
	}
	logger.WithField("count", len(demoSweets)).Info("demo catalog seeded")
	return nil
}
