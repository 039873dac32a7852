package middleware

import (
	"github.com/gin-gonic/gin"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"

	"storefront-service/internal/models"
)

// DevelopmentAuthMiddleware is a simple auth middleware for development
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user ID from context (set by IstioAuth)
		userIDVal, _ := c.Get("user_id")
		userID := ""
		if userIDVal != nil {
			userID = userIDVal.(string)
		}
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001" // Valid UUID for dev
		}

		// Set both camelCase and snake_case for compatibility with RBAC middleware
		c.Set("userId", userID)
		c.Set("user_id", userID)
		c.Set("staff_id", userID) // RBAC middleware checks staff_id first
		c.Next()
	}
}

// GetActor builds the acting identity from IstioAuth context. The role comes
// from the JWT claim when present, else the X-User-Role header.
func GetActor(c *gin.Context) models.ActorContext {
	actor := gosharedmw.GetActorInfo(c)

	role := c.GetString("user_role")
	if role == "" {
		role = c.GetHeader("X-User-Role")
	}

	return models.ActorContext{
		ID:    actor.ActorID,
		Name:  actor.ActorName,
		Email: actor.ActorEmail,
		Role:  role,
	}
}
