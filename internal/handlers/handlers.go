// Package handlers contains the HTTP handlers for the Pawgrove API.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pawgrove/pawgrove/backend/internal/auth"
	"github.com/pawgrove/pawgrove/backend/internal/feed"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	feed *feed.Service
	auth *auth.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(feedService *feed.Service, authService *auth.Service) *Handlers {
	return &Handlers{
		feed: feedService,
		auth: authService,
	}
}

// AuthMiddleware validates requests with JWT tokens and loads the user
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		user, err := h.auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
