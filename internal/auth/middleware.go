package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by StudentAuth.
const (
	CtxClaims = "claims"
	CtxToken  = "bearer_token"
)

// StudentAuth enforces bearer JWT tokens signed with HS256. The raw token is
// kept on the context so handlers can forward it verbatim to the portal
// backend.
func StudentAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(CtxClaims, claims)
		c.Set(CtxToken, tokenStr)
		c.Next()
	}
}

// ClaimsFrom returns the parsed claims set by StudentAuth.
func ClaimsFrom(c *gin.Context) Claims {
	claimsAny, _ := c.Get(CtxClaims)
	claims, _ := claimsAny.(Claims)
	return claims
}

// TokenFrom returns the raw bearer token set by StudentAuth.
func TokenFrom(c *gin.Context) string {
	tokenAny, _ := c.Get(CtxToken)
	token, _ := tokenAny.(string)
	return token
}
