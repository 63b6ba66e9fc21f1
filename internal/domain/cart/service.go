// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
)

var (
	ErrProductUnavailable = errors.New("product not found or unavailable")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// ProductLookup resolves products for cart operations
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

// Service handles guest cart business logic
type Service struct {
	kv       kv.Store
	products ProductLookup
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a new cart service
func NewService(store kv.Store, products ProductLookup, cfg *config.Config) *Service {
	ttl := 24 * time.Hour
	if cfg != nil && cfg.Store.CartTTL > 0 {
		ttl = cfg.Store.CartTTL
	}
	return &Service{
		kv:       store,
		products: products,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CartResponse represents a cart with totals and the compatibility advisory
type CartResponse struct {
	SessionID            string    `json:"session_id"`
	Items                []Line    `json:"items"`
	Totals               Totals    `json:"totals"`
	Voltages             []int     `json:"voltages,omitempty"`
	CompatibilityWarning string    `json:"compatibility_warning,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// NewResponse builds the response view of c
func NewResponse(c *Cart) *CartResponse {
	items := c.Items
	if items == nil {
		items = []Line{}
	}
	resp := &CartResponse{
		SessionID: c.SessionID,
		Items:     items,
		Totals:    c.Totals(),
		Voltages:  Voltages(c.Items),
		UpdatedAt: c.UpdatedAt,
	}
	if warning, ok := CompatibilityWarning(c.Items); ok {
		resp.CompatibilityWarning = warning
	}
	return resp
}

// GetCart loads the cart for sessionID, empty when none is stored
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, cartKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		now := s.now().UTC()
		return &Cart{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	c.SessionID = sessionID
	return &c, nil
}

// AddItem adds a product to the cart
func (s *Service) AddItem(ctx context.Context, sessionID string, req *AddToCartRequest) (*Cart, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil || !p.IsVisible() || !p.IsInStock() {
		return nil, ErrProductUnavailable
	}

	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Add(*p, qty, s.now().UTC())
		return nil
	})
}

// IncrementItem adds one unit of productID
func (s *Service) IncrementItem(ctx context.Context, sessionID, productID string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.Increment(productID) })
}

// DecrementItem removes one unit of productID, never going below 1
func (s *Service) DecrementItem(ctx context.Context, sessionID, productID string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.Decrement(productID) })
}

// RemoveItem removes the line for productID
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*Cart, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error { return c.Remove(productID) })
}

// ClearCart deletes the cart for sessionID
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, cartKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	c, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.saveCart(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) saveCart(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartKey(c.SessionID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:session:" + sessionID
}
