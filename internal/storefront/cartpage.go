package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"sweetshop/internal/apiclient"
	"sweetshop/internal/cart"
	"sweetshop/internal/checkout"
	"sweetshop/internal/notify"
)

// ErrCheckoutInProgress is returned when Checkout is called while one is running.
var ErrCheckoutInProgress = errors.New("checkout already in progress")

// CartPage edits the cart and runs checkout.
type CartPage struct {
	cart     *cart.Cart
	runner   *checkout.Runner
	notifier notify.Notifier
	logger   logrus.FieldLogger

	mu         sync.Mutex
	processing bool
}

// Cart exposes the underlying cart for rendering.
func (p *CartPage) Cart() *cart.Cart {
	return p.cart
}

// Processing reports whether a checkout is running.
func (p *CartPage) Processing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing
}

// Increment adds one unit to an existing line.
func (p *CartPage) Increment(id string) {
	if l, ok := p.cart.Line(id); ok {
		p.cart.SetQuantity(id, l.Quantity+1)
	}
}

// Decrement removes one unit; the line goes away at zero.
func (p *CartPage) Decrement(id string) {
	if l, ok := p.cart.Line(id); ok {
		p.cart.SetQuantity(id, l.Quantity-1)
	}
}

func (p *CartPage) Remove(id string) {
	p.cart.Remove(id)
}

func (p *CartPage) Clear() {
	p.cart.Clear()
}

// Checkout buys every unit in the cart, one request at a time.
func (p *CartPage) Checkout(ctx context.Context) error {
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return ErrCheckoutInProgress
	}
	p.processing = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}()

	res, err := p.runner.Run(ctx, p.cart)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		p.notifier.Notify(notify.Warning, "Cart is empty")
		return err
	case err != nil:
		p.notifier.Notify(notify.Error, apiclient.Message(err, "Checkout failed"))
		return err
	}
	p.notifier.Notify(notify.Success, fmt.Sprintf("Successfully purchased %d item(s)!", res.Units))
	return nil
}
