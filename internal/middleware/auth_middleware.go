package middleware

import (
	"net/http"
	"strings"

	"filevault/internal/auth"
	"filevault/internal/repositories"
	"filevault/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and loads the account behind it.
// Deactivated accounts are rejected even when their token is still valid.
func AuthMiddleware(users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Token validation failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil {
			logger.Log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to load token principal")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}
		if !user.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
