package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GBZC2708/procard-api/internal/config"
)

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// UserMiddleware resolves the acting user from the X-User header, falling
// back to the configured default. Single-user app; there is no auth.
func UserMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader("X-User")
		if user == "" {
			user = cfg.DefaultUser
		}
		c.Set("user", user)
		c.Next()
	}
}
