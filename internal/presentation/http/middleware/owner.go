package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	infraRepo "github.com/nuwanwp/billora-api/internal/infrastructure/repository"
	"github.com/nuwanwp/billora-api/internal/presentation/http/dto/response"
)

// OwnerScopeMiddleware copies the authenticated user into the request
// context so repository queries are scoped to that user's records. Must run
// after AuthMiddleware.
func OwnerScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		userID, ok := userIDVal.(uuid.UUID)
		if !ok || userID == uuid.Nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		ctx := infraRepo.WithOwner(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
