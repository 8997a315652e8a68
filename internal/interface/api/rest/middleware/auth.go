package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
)

const (
	CtxUserRole  = "userRole"
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
)

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)

		c.Next()
	}
}

// Actor reads the caller identity set by AuthMiddleware.
func Actor(c *gin.Context) (user.Actor, bool) {
	id, err := uuid.Parse(c.GetString(CtxUserID))
	if err != nil || id == uuid.Nil {
		return user.Actor{}, false
	}
	return user.Actor{ID: id, Email: c.GetString(CtxUserEmail)}, true
}
