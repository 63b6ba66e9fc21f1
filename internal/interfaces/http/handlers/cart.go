// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/cart"
)

// CartHandler handles guest cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	current, err := h.cartService.GetCart(c.Request.Context(), getOrCreateSessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cart.NewResponse(current),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.cartService.AddItem(c.Request.Context(), sessionID, &req)
	h.respond(c, updated, err, "Item added to cart successfully")
}

// IncrementItem handles PUT /cart/items/:id/increment
func (h *CartHandler) IncrementItem(c *gin.Context) {
	updated, err := h.cartService.IncrementItem(c.Request.Context(), getOrCreateSessionID(c), c.Param("id"))
	h.respond(c, updated, err, "Cart item updated successfully")
}

// DecrementItem handles PUT /cart/items/:id/decrement
func (h *CartHandler) DecrementItem(c *gin.Context) {
	updated, err := h.cartService.DecrementItem(c.Request.Context(), getOrCreateSessionID(c), c.Param("id"))
	h.respond(c, updated, err, "Cart item updated successfully")
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	updated, err := h.cartService.RemoveItem(c.Request.Context(), getOrCreateSessionID(c), c.Param("id"))
	h.respond(c, updated, err, "Item removed from cart successfully")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), getOrCreateSessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) respond(c *gin.Context, updated *cart.Cart, err error, message string) {
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, cart.ErrProductUnavailable), errors.Is(err, cart.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    cart.NewResponse(updated),
	})
}
