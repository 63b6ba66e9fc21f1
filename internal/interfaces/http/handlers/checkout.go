// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/checkout"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// SelectPaymentRequest represents the payment step
type SelectPaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// AttachProofRequest carries the payment screenshot as a data URI
type AttachProofRequest struct {
	Image string `json:"image" binding:"required"`
}

// StartCheckout handles POST /checkout
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	req := checkout.StartRequest{SessionID: getOrCreateSessionID(c)}
	req.UserID, _ = middleware.GetUserIDFromContext(c)
	req.Email, _ = middleware.GetUserEmailFromContext(c)

	flow, err := h.checkoutService.Start(c.Request.Context(), req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Checkout started",
		"data":    flow,
	})
}

// GetCheckout handles GET /checkout/:id
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	flow, ok := h.owned(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout retrieved successfully",
		"data":    flow,
	})
}

// SubmitShipping handles PUT /checkout/:id/shipping
func (h *CheckoutHandler) SubmitShipping(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}

	var info order.ShippingInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	flow, err := h.checkoutService.SubmitShipping(c.Request.Context(), c.Param("id"), info)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping details saved",
		"data":    flow,
	})
}

// SelectPayment handles PUT /checkout/:id/payment
func (h *CheckoutHandler) SelectPayment(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}

	var req SelectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	method, ok := order.ParsePaymentMethod(req.Method)
	if !ok {
		respondCheckoutError(c, checkout.ErrInvalidPayment)
		return
	}

	flow, instructions, err := h.checkoutService.SelectPayment(c.Request.Context(), c.Param("id"), method)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment method selected",
		"data": gin.H{
			"checkout":     flow,
			"instructions": instructions,
		},
	})
}

// AttachProof handles POST /checkout/:id/proof
func (h *CheckoutHandler) AttachProof(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}

	var req AttachProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	flow, err := h.checkoutService.AttachProof(c.Request.Context(), c.Param("id"), req.Image)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment proof attached",
		"data":    flow,
	})
}

// ConfirmOrder handles POST /checkout/:id/confirm
func (h *CheckoutHandler) ConfirmOrder(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}

	result, err := h.checkoutService.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// WhatsAppHandoff handles POST /checkout/:id/whatsapp
func (h *CheckoutHandler) WhatsAppHandoff(c *gin.Context) {
	if _, ok := h.owned(c); !ok {
		return
	}

	flow, err := h.checkoutService.WhatsAppHandoff(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Continue your order on WhatsApp",
		"data":    flow,
	})
}

// owned loads the flow and checks it belongs to the caller's session.
// Foreign flows are reported as not found.
func (h *CheckoutHandler) owned(c *gin.Context) (*checkout.Flow, bool) {
	flow, err := h.checkoutService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return nil, false
	}
	if flow.SessionID != getOrCreateSessionID(c) {
		respondCheckoutError(c, checkout.ErrFlowNotFound)
		return nil, false
	}
	return flow, true
}

func respondCheckoutError(c *gin.Context, err error) {
	var validation *order.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  err.Error(),
			"fields": validation.Fields,
		})
	case errors.Is(err, checkout.ErrFlowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidPayment),
		errors.Is(err, checkout.ErrProofRequired),
		errors.Is(err, upload.ErrInvalidDataURI),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrWhatsAppDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
	}
}
