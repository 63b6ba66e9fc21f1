// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"

	"github.com/your-org/solar-storefront/internal/domain/product"
)

var ErrItemNotFound = errors.New("item not in cart")

// Line is a cart line. Quantity is always at least 1; lines are removed,
// never decremented to zero.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"added_at"`
}

// Subtotal returns price times quantity for the line
func (l Line) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart is a guest cart keyed by session
type Cart struct {
	SessionID string    `json:"session_id"`
	Items     []Line    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`     // Number of distinct lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	TotalAmount   int64 `json:"total_amount"`
}

// Add puts qty units of p in the cart, merging with an existing line
func (c *Cart) Add(p product.Product, qty int, now time.Time) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == p.ID {
			c.Items[i].Quantity += qty
			c.Items[i].Product = p
			return
		}
	}
	c.Items = append(c.Items, Line{Product: p, Quantity: qty, AddedAt: now})
}

// Increment adds one unit to the line for productID
func (c *Cart) Increment(productID string) error {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity++
			return nil
		}
	}
	return ErrItemNotFound
}

// Decrement removes one unit from the line for productID. A line at 1 stays
// at 1.
func (c *Cart) Decrement(productID string) error {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			if c.Items[i].Quantity > 1 {
				c.Items[i].Quantity--
			}
			return nil
		}
	}
	return ErrItemNotFound
}

// Remove deletes the line for productID and no other
func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
}

// Total returns the sum of price times quantity over all lines
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.Items {
		total += line.Subtotal()
	}
	return total
}

// Count returns the number of units in the cart
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.Items {
		n += line.Quantity
	}
	return n
}

// Totals summarizes the cart
func (c *Cart) Totals() Totals {
	return Totals{
		ItemCount:     len(c.Items),
		TotalQuantity: c.Count(),
		TotalAmount:   c.Total(),
	}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
