// Package checkout turns a cart into single-unit purchase requests.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sweetshop/internal/cart"
	"sweetshop/internal/logging"
)

// ErrEmptyCart is returned when there is nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// Purchaser buys exactly one unit of a sweet.
type Purchaser interface {
	PurchaseSweet(ctx context.Context, sweetID string) error
}

// Result summarizes a completed checkout.
type Result struct {
	Units int
	Total decimal.Decimal
}

// Error reports where a checkout stopped. Units bought before the failure stay in the
// cart; Completed says how many went through.
type Error struct {
	SweetID   string
	Completed int
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("checkout stopped at sweet %s after %d unit(s): %v", e.SweetID, e.Completed, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner issues purchases strictly one after another.
type Runner struct {
	purchaser Purchaser
	logger    logrus.FieldLogger
}

// New returns a Runner.
func New(p Purchaser, logger logrus.FieldLogger) *Runner {
	return &Runner{purchaser: p, logger: logging.OrDiscard(logger)}
}

// Run buys every unit in c, line by line, awaiting each request before the next. On
// the first failure it stops and leaves c untouched. c is cleared only when every unit
// was bought.
func (r *Runner) Run(ctx context.Context, c *cart.Cart) (Result, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return Result{}, ErrEmptyCart
	}

	res := Result{Total: decimal.Zero}
	for _, line := range lines {
		for i := 0; i < line.Quantity; i++ {
			if err := ctx.Err(); err != nil {
				return res, &Error{SweetID: line.SweetID, Completed: res.Units, Err: err}
			}
			if err := r.purchaser.PurchaseSweet(ctx, line.SweetID); err != nil {
				r.logger.WithFields(logrus.Fields{
					"sweet_id":  line.SweetID,
					"completed": res.Units,
				}).WithError(err).Warn("checkout: purchase failed")
				return res, &Error{SweetID: line.SweetID, Completed: res.Units, Err: err}
			}
			res.Units++
			res.Total = res.Total.Add(line.UnitPrice)
		}
	}

	c.Clear()
	r.logger.WithFields(logrus.Fields{"units": res.Units, "total": res.Total.StringFixed(2)}).Info("checkout: completed")
	return res, nil
}
