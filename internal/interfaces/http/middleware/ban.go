package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BanChecker reports whether an IP is banned
type BanChecker interface {
	IsBanned(ctx context.Context, ip string) (bool, error)
}

// BanCheck rejects requests from banned IPs. A store failure lets the
// request through.
func BanCheck(bans BanChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		banned, err := bans.IsBanned(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WithError(err).Warn("Ban check failed, allowing request")
			c.Next()
			return
		}
		if banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access from your network has been blocked",
			})
			return
		}
		c.Next()
	}
}
