package storefront

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/domain"
	"sweetshop/internal/notify"
)

// SweetForm is the raw text of the inventory form.
type SweetForm struct {
	Name        string
	Category    string
	Price       string
	Quantity    string
	Description string
}

// Parse validates the form. Description is optional.
func (f SweetForm) Parse() (domain.SweetInput, error) {
	in := domain.SweetInput{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
	}
	price, quantity := strings.TrimSpace(f.Price), strings.TrimSpace(f.Quantity)
	if in.Name == "" || in.Category == "" || price == "" || quantity == "" {
		return domain.SweetInput{}, invalid("Please fill all required fields")
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.SweetInput{}, invalid("Price must be a number")
	}
	q, err := strconv.Atoi(quantity)
	if err != nil {
		return domain.SweetInput{}, invalid("Quantity must be a whole number")
	}
	if p.IsNegative() || q < 0 {
		return domain.SweetInput{}, invalid("Price and quantity cannot be negative")
	}
	in.Price, in.Quantity = p, q
	return in, nil
}

// Admin is the inventory page: list, add, edit, delete and restock.
type Admin struct {
	api      AdminAPI
	notifier notify.Notifier
	logger   logrus.FieldLogger

	sweets    []domain.Sweet
	editingID string
	// Form holds the values being edited; it is prefilled by Edit.
	Form SweetForm
}

// Load fetches the inventory.
func (a *Admin) Load(ctx context.Context) error {
	sweets, err := a.api.ListSweets(ctx)
	if err != nil {
		a.notifier.Notify(notify.Error, "Failed to load sweets")
		return err
	}
	a.sweets = sweets
	return nil
}

// Sweets returns the loaded inventory.
func (a *Admin) Sweets() []domain.Sweet {
	out := make([]domain.Sweet, len(a.sweets))
	copy(out, a.sweets)
	return out
}

// EditingID is the sweet being edited, or "" when the form adds a new one.
func (a *Admin) EditingID() string {
	return a.editingID
}

// Edit prefills the form from a loaded sweet.
func (a *Admin) Edit(id string) bool {
	for _, s := range a.sweets {
		if s.ID == id {
			a.editingID = id
			a.Form = SweetForm{
				Name:        s.Name,
				Category:    s.Category,
				Price:       s.Price.String(),
				Quantity:    strconv.Itoa(s.Quantity),
				Description: s.Description,
			}
			return true
		}
	}
	return false
}

// Cancel resets the form to "add new".
func (a *Admin) Cancel() {
	a.editingID = ""
	a.Form = SweetForm{}
}

// Save creates a sweet, or updates the one being edited.
func (a *Admin) Save(ctx context.Context, form SweetForm) error {
	a.Form = form
	in, err := form.Parse()
	if err != nil {
		a.notifier.Notify(notify.Error, err.Error())
		return err
	}
	if a.editingID != "" {
		_, err = a.api.UpdateSweet(ctx, a.editingID, in)
	} else {
		_, err = a.api.CreateSweet(ctx, in)
	}
	if err != nil {
		a.notifier.Notify(notify.Error, apiclient.Message(err, "Failed to save sweet"))
		return err
	}
	if a.editingID != "" {
		a.notifier.Notify(notify.Success, "Sweet updated successfully")
	} else {
		a.notifier.Notify(notify.Success, "Sweet added successfully")
	}
	a.Cancel()
	a.reload(ctx)
	return nil
}

// Delete removes a sweet.
func (a *Admin) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteSweet(ctx, id); err != nil {
		a.notifier.Notify(notify.Error, "Failed to delete sweet")
		return err
	}
	if a.editingID == id {
		a.Cancel()
	}
	a.notifier.Notify(notify.Success, "Sweet deleted successfully")
	a.reload(ctx)
	return nil
}

// Restock adds amount units to a sweet.
func (a *Admin) Restock(ctx context.Context, id string, amount int) error {
	if amount <= 0 {
		err := invalid("Restock amount must be positive")
		a.notifier.Notify(notify.Error, err.Error())
		return err
	}
	if _, err := a.api.RestockSweet(ctx, id, amount); err != nil {
		a.notifier.Notify(notify.Error, "Failed to restock sweet")
		return err
	}
	a.notifier.Notify(notify.Success, "Sweet restocked successfully")
	a.reload(ctx)
	return nil
}

func (a *Admin) reload(ctx context.Context) {
	if err := a.Load(ctx); err != nil {
		a.logger.WithError(err).Warn("admin: reload failed")
	}
}
