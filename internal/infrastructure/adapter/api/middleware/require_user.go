package middleware

import (
	"net/http"
	"strconv"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the authenticated user id set by the session layer in front of this service
const UserIDHeader = "X-User-ID"

const userIDKey = "userID"

// RequireUser rejects requests without a valid user id header
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.GetHeader(UserIDHeader), 10, 64)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    errs.ErrorCode(errs.ErrInvalidRequest),
				Message: "Missing or invalid " + UserIDHeader + " header",
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by RequireUser, or 0
func UserID(c *gin.Context) uint64 {
	return c.GetUint64(userIDKey)
}
