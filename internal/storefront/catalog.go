package storefront

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/cart"
	"sweetshop/internal/domain"
	"sweetshop/internal/notify"
)

// Catalog is the browse/search/purchase page.
type Catalog struct {
	api      CatalogAPI
	cart     *cart.Cart
	notifier notify.Notifier
	logger   logrus.FieldLogger

	all      []domain.Sweet
	shown    []domain.Sweet
	selected string
	// Error is shown in place of the list when loading failed.
	Error string
}

// Load fetches the full catalog and resets any search.
func (c *Catalog) Load(ctx context.Context) error {
	sweets, err := c.api.ListSweets(ctx)
	if err != nil {
		c.Error = "Failed to load sweets"
		c.logger.WithError(err).Warn("catalog: load failed")
		return err
	}
	c.Error = ""
	c.all = sweets
	c.shown = sweets
	return nil
}

// Search asks the backend first. When that fails it filters the last full fetch
// locally, so search never surfaces an error. It reports whether the fallback was used.
func (c *Catalog) Search(ctx context.Context, f domain.SearchFilter) (fallback bool) {
	sweets, err := c.api.SearchSweets(ctx, f)
	if err == nil {
		c.shown = sweets
		return false
	}
	c.logger.WithError(err).Warn("catalog: search failed, filtering locally")
	c.shown = f.Filter(c.all)
	return true
}

// Sweets returns what the page currently lists.
func (c *Catalog) Sweets() []domain.Sweet {
	out := make([]domain.Sweet, len(c.shown))
	copy(out, c.shown)
	return out
}

func (c *Catalog) find(id string) (domain.Sweet, bool) {
	for _, list := range [][]domain.Sweet{c.shown, c.all} {
		for _, s := range list {
			if s.ID == id {
				return s, true
			}
		}
	}
	return domain.Sweet{}, false
}

// Select opens the detail view of a listed sweet.
func (c *Catalog) Select(id string) (domain.Sweet, bool) {
	s, ok := c.find(id)
	if ok {
		c.selected = id
	}
	return s, ok
}

// Selected returns the sweet in the detail view, if any.
func (c *Catalog) Selected() (domain.Sweet, bool) {
	if c.selected == "" {
		return domain.Sweet{}, false
	}
	return c.find(c.selected)
}

// CloseDetail dismisses the detail view.
func (c *Catalog) CloseDetail() {
	c.selected = ""
}

// Purchase buys one unit, then reloads the catalog so stock is current.
func (c *Catalog) Purchase(ctx context.Context, id string) error {
	if err := c.api.PurchaseSweet(ctx, id); err != nil {
		c.notifier.Notify(notify.Error, apiclient.Message(err, "Purchase failed"))
		return err
	}
	if err := c.Load(ctx); err != nil {
		c.logger.WithError(err).Warn("catalog: reload after purchase failed")
	}
	c.selected = ""
	c.notifier.Notify(notify.Success, "Yum! Sweet purchased.")
	return nil
}

// AddToCart puts one unit of a listed sweet into the cart. Sold-out sweets are refused.
func (c *Catalog) AddToCart(id string) error {
	s, ok := c.find(id)
	if !ok {
		c.notifier.Notify(notify.Error, "Sweet not found")
		return fmt.Errorf("sweet %s: %w", id, domain.ErrNotFound)
	}
	if !s.InStock() {
		c.notifier.Notify(notify.Warning, s.Name+" is sold out")
		return fmt.Errorf("sweet %s: %w", id, domain.ErrOutOfStock)
	}
	c.cart.Add(s)
	c.notifier.Notify(notify.Success, "Added "+s.Name+" to cart")
	return nil
}
