package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/logist-zp/internal/model"
)

const principalKey = "principal"

type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// Auth requires a bearer token and stores the resolved principal on the context.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		principal, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		if !principal.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}
