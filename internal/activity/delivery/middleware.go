package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronAuthMiddleware gates the trigger routes. Requests from the platform
// cron carry the X-Vercel-Cron-Invoke header; manual triggers must present
// the shared secret in X-Cron-Token.
func CronAuthMiddleware(cronSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Vercel-Cron-Invoke") != "" {
			c.Next()
			return
		}

		if cronSecret != "" && c.GetHeader("X-Cron-Token") == cronSecret {
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing cron token"})
		c.Abort()
	}
}
