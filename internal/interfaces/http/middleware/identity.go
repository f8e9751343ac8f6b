package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brickdesk/backend/internal/interfaces/http/dto"
)

// UserIDHeader identifies the operator. The back office is a
// single-operator tool behind a reverse proxy that injects this header;
// there is no session or token handling here.
const UserIDHeader = "X-User-ID"

const userIDContextKey = "user_id"

// Identity returns a middleware that requires a valid user id header
// and stores the parsed id in the request context
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing "+UserIDHeader+" header"))
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid "+UserIDHeader+" header"))
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user id from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDContextKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
