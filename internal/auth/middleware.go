package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// validates JWT tokens and adds user info to context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// validates JWT if present but doesn't require it
// handlers decide how to treat a missing identity
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c.GetHeader("Authorization")); ok {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return "", false
	}

	return userID, true
}

// extracts the email claim, empty when the token carried none
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}

func claimsFromHeader(authHeader string) (*Claims, bool) {
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := ValidateJWT(parts[1])
	if err != nil {
		return nil, false
	}

	return claims, true
}

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
}
