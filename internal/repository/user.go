package repository

import (
	"context"

	"github.com/clubciclismoepn/backend/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
// This way we get: 1) can swap DB later without touching usecase 2) We can pass a mock implementation of interface in tests
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error

	// UpdatePassword replaces the stored hash. Password changes that must be
	// atomic with a recovery-token redemption go through
	// RecoveryTokenRepository.Consume instead.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
