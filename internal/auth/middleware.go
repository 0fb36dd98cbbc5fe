package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyClaims = "auth_claims"

const bearerPrefix = "Bearer"

// ClaimsFromContext returns the claims set by RequireBearer.
func ClaimsFromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// UserIDFromContext returns the current user ID set by RequireBearer. "" if not set.
func UserIDFromContext(c *gin.Context) string {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return ""
	}
	return claims.ID
}

// RequireBearer returns a middleware that checks the Authorization header for a
// valid bearer token and puts its claims in context. If missing or invalid, responds with 401.
func RequireBearer(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		claims, err := issuer.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}
