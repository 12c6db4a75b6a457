package middleware

import (
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey        = "claims"
	rolesEnforcedKey = "roles_enforced"
)

type TokenParser interface {
	Enabled() bool
	ParseToken(token string) (*auth.Claims, error)
}

// OptionalAuth attaches claims from a Bearer token. Requests without a token pass through;
// a token that does not verify is rejected.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || tokens == nil || !tokens.Enabled() {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed Authorization header"})
			return
		}
		claims, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// EnforceRoles marks the request so handlers scope non-admin callers to their own data.
func EnforceRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(rolesEnforcedKey, true)
		c.Next()
	}
}

// ScopedClaims returns the caller's claims when roles are enforced and the caller is not an admin.
func ScopedClaims(c *gin.Context) (*auth.Claims, bool) {
	if !c.GetBool(rolesEnforcedKey) {
		return nil, false
	}
	claims, ok := ClaimsFrom(c)
	if !ok || claims.IsAdmin() {
		return nil, false
	}
	return claims, true
}
