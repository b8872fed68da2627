package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer/pkg/utils"
)

// TokenValidator checks a session token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*utils.JWTClaims, error)
}

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Set("display_name", claims.DisplayName)

		c.Next()
	}
}

// GetUsername returns the username set by AuthMiddleware
func GetUsername(c *gin.Context) string {
	return c.GetString("username")
}
