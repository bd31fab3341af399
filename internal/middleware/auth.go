package middleware

import (
	"net/http"
	"strings"

	"AE-VISA/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "user_email"
)

// RequireAuth verifies the Bearer token and stores the caller's identity on
// the context. Public endpoints are simply registered outside the group that
// carries this middleware; there is no operation-name allowlist.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's id, or empty on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
