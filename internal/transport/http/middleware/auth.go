package middleware

import (
	"net/http"
	"strings"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"
	errForbidden    = "Not enough permissions"

	// gin context keys set by the middleware chain.
	CtxSubject = "subject"
	CtxRole    = "role"
	CtxUserID  = "userID"
)

// Auth validates the bearer session assertion and puts the subject email
// and role into the gin context.
func Auth(issuer *session.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		claims, err := issuer.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(CtxSubject, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole runs after Auth and gates the route on the role embedded in
// the validated assertion. This is deliberately a capability check, not a
// re-query of the credential store: a role change takes effect only once
// a new assertion is issued.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := c.Get(CtxRole)
		if !ok || got.(domain.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		c.Next()
	}
}
