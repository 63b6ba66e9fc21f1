package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/interfaces/http/middleware"
)

// SessionHandler handles visitor heartbeats, bans and storefront settings
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// HeartbeatRequest optionally names the visitor
type HeartbeatRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BanRequest names the IP to ban
type BanRequest struct {
	IP string `json:"ip" binding:"required"`
}

// Heartbeat handles POST /sessions/heartbeat
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	if claims, ok := middleware.GetClaimsFromContext(c); ok {
		req.Email = claims.Email
		req.Name = claims.Name
	}

	session, err := h.store.Heartbeat(c.Request.Context(), c.ClientIP(), req.Email, req.Name, deviceFromUserAgent(c.Request.UserAgent()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record heartbeat",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Heartbeat recorded",
		"data":    session,
	})
}

// GetSettings handles GET /settings
func (h *SessionHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings retrieved successfully",
		"data":    settings,
	})
}

// AdminSaveSettings handles PUT /admin/settings
func (h *SessionHandler) AdminSaveSettings(c *gin.Context) {
	var settings store.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.SaveSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings saved successfully",
		"data":    settings,
	})
}

// AdminListSessions handles GET /admin/sessions
func (h *SessionHandler) AdminListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sessions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sessions retrieved successfully",
		"data":    sessions,
	})
}

// AdminListBans handles GET /admin/bans
func (h *SessionHandler) AdminListBans(c *gin.Context) {
	banned, err := h.store.ListBanned(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve banned IPs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Banned IPs retrieved successfully",
		"data":    banned,
	})
}

// AdminBan handles POST /admin/bans
func (h *SessionHandler) AdminBan(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IP) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "IP address is required",
		})
		return
	}

	if err := h.store.Ban(c.Request.Context(), req.IP); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to ban IP",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "IP banned",
	})
}

// AdminUnban handles DELETE /admin/bans/:ip
func (h *SessionHandler) AdminUnban(c *gin.Context) {
	if err := h.store.Unban(c.Request.Context(), c.Param("ip")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to unban IP",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "IP unbanned",
	})
}

func deviceFromUserAgent(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"):
		return "tablet"
	case strings.Contains(lower, "mobi"), strings.Contains(lower, "android"), strings.Contains(lower, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}
