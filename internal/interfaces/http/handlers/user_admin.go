// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/user"
)

// UserAdminHandler handles admin profile endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(adminService *user.AdminService) *UserAdminHandler {
	return &UserAdminHandler{adminService: adminService}
}

// GetProfiles handles GET /admin/users
func (h *UserAdminHandler) GetProfiles(c *gin.Context) {
	var req user.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.adminService.ListProfiles(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Profiles are temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profiles retrieved successfully",
		"data":    response,
	})
}

// ExportProfiles handles GET /admin/users/export
func (h *UserAdminHandler) ExportProfiles(c *gin.Context) {
	var req user.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	data, filename, err := h.adminService.ExportProfiles(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to export profiles",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
