package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/domain/assistant"
)

// AssistantHandler handles the chat assistant endpoint
type AssistantHandler struct {
	assistantService *assistant.Service
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService *assistant.Service) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// Chat handles POST /assistant/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.assistantService.Reply(c.Request.Context(), c.ClientIP(), &req)
	switch {
	case errors.Is(err, assistant.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case errors.Is(err, assistant.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reply generated",
		"data":    resp,
	})
}
