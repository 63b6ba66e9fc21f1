// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/pkg/pdf"
)

// OrderHandler handles admin order endpoints
type OrderHandler struct {
	store      *store.Store
	pdfService *pdf.Service
	log        *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(s *store.Store, pdfService *pdf.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		store:      s,
		pdfService: pdfService,
		log:        log,
	}
}

// UpdateOrderStatusRequest represents a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	orders, err := h.store.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	if raw := c.Query("status"); raw != "" {
		status, ok := order.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": store.ErrInvalidStatus.Error()})
			return
		}
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	if orders == nil {
		orders = []order.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	o, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.store.UpdateOrderStatus(c.Request.Context(), c.Param("id"), order.Status(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    updated,
	})
}

// AdminGetInvoice handles GET /admin/orders/:id/invoice
func (h *OrderHandler) AdminGetInvoice(c *gin.Context) {
	o, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	// HTML preview does not need wkhtmltopdf
	if c.Query("format") == "html" {
		html, err := h.pdfService.RenderHTML(o)
		if err != nil {
			h.log.WithError(err).WithField("order_id", o.ID).Error("Failed to render invoice")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	buf, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		h.log.WithError(err).WithField("order_id", o.ID).Error("Failed to generate invoice PDF")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", pdf.InvoiceNumber(o)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process order"})
	}
}
