// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/analytics"
)

// AnalyticsHandler handles the admin dashboard endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboardStats handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve dashboard statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard statistics retrieved successfully",
		"data":    stats,
	})
}

// GetSalesAnalytics handles GET /admin/analytics/sales?days=30
func (h *AnalyticsHandler) GetSalesAnalytics(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 || d > 365 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "days must be between 1 and 365",
			})
			return
		}
		days = d
	}

	sales, err := h.analyticsService.GetSalesAnalytics(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sales analytics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales analytics retrieved successfully",
		"data":    sales,
	})
}
