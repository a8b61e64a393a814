package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/repository"
	"github.com/gin-gonic/gin"
)

// EnsureUser runs after Auth. Assertions carry the email, storage is
// keyed by user ID, so resolve the credential once here. A valid
// assertion for a since-deleted credential is rejected.
func EnsureUser(users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(CtxSubject)

		user, err := users.FindByEmail(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "ensure user lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Next()
	}
}
