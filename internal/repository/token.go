package repository

import (
	"context"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
)

type RecoveryTokenRepository interface {
	// Create persists a freshly issued token. A value collision with an
	// active token surfaces as domain.ErrIssueFailed.
	Create(ctx context.Context, token *domain.RecoveryToken) (*domain.RecoveryToken, error)

	// FindByValue is the non-consuming lookup behind check(). When the value
	// matches both a spent and an active token, the active one wins.
	FindByValue(ctx context.Context, value string) (*domain.RecoveryToken, error)

	// Consume atomically re-validates the token, stores the new password
	// hash on the bound user and marks the token used — all in one
	// transaction. Exactly one concurrent caller can succeed; the rest get
	// domain.ErrTokenInvalid.
	Consume(ctx context.Context, value, newPasswordHash string) error

	// DeleteStale removes used or expired tokens, freeing their values for
	// reissue. Returns how many rows were deleted.
	DeleteStale(ctx context.Context, now time.Time, limit int) (int, error)
}
