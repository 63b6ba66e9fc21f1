// internal/interfaces/http/handlers/session_id.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "session_id"
	sessionHeader = "X-Session-ID"
)

// getOrCreateSessionID gets the guest session id from the header or cookie,
// or creates a new one
func getOrCreateSessionID(c *gin.Context) string {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		sessionID, _ = c.Cookie(sessionCookie)
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
		// Set session cookie (24 hours)
		c.SetCookie(sessionCookie, sessionID, 86400, "/", "", false, true)
	}
	c.Header(sessionHeader, sessionID)
	return sessionID
}
