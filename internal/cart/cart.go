// Package cart is the client-side shopping cart: an ordered set of lines, one per sweet,
// with totals derived on every read.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"sweetshop/internal/domain"
)

// Line is one cart entry. Display attributes are captured when the sweet is first added.
type Line struct {
	SweetID   string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is safe for concurrent use. Every line has Quantity >= 1 and a unique SweetID.
type Cart struct {
	mu    sync.RWMutex
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add increments the line for s, or appends a new line with quantity 1.
func (c *Cart) Add(s domain.Sweet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(s.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		SweetID:   s.ID,
		Name:      s.Name,
		Category:  s.Category,
		UnitPrice: s.Price,
		Quantity:  1,
	})
}

// Remove deletes the line for sweetID. Unknown ids are ignored.
func (c *Cart) Remove(sweetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(sweetID)
}

// SetQuantity overwrites the quantity of an existing line. q <= 0 removes the line.
// It never creates a line.
func (c *Cart) SetQuantity(sweetID string, q int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q <= 0 {
		c.removeLocked(sweetID)
		return
	}
	if i := c.indexLocked(sweetID); i >= 0 {
		c.lines[i].Quantity = q
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for sweetID.
func (c *Cart) Line(sweetID string) (Line, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(sweetID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

// TotalItems is the sum of line quantities.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of line subtotals.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) indexLocked(sweetID string) int {
	for i, l := range c.lines {
		if l.SweetID == sweetID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeLocked(sweetID string) {
	if i := c.indexLocked(sweetID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}
