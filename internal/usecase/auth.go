package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/clubciclismoepn/backend/internal/crypto"
	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/repository"
	"github.com/clubciclismoepn/backend/internal/session"
)

type AuthUsecase struct {
	users  repository.UserRepository
	issuer *session.Issuer
}

func NewAuthUsecase(users repository.UserRepository, issuer *session.Issuer) *AuthUsecase {
	return &AuthUsecase{users: users, issuer: issuer}
}

// Register creates a credential for a normalized email. The role defaults
// to Normal when unset.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, password string, role domain.Role) (*domain.User, error) {
	if !validPassword(password) {
		return nil, domain.ErrWeakPassword
	}
	if role == "" {
		role = domain.RoleNormal
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        NormalizeEmail(emailAddr),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credential and issues a session assertion. A missing
// user and a wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		return "", domain.ErrInvalidCredential
	}
	if !crypto.CheckPassword(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredential
	}

	token, err := u.issuer.Issue(user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

func (u *AuthUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return u.users.List(ctx)
}

// ChangeRole updates a credential's role. Outstanding session assertions
// keep their old role until they expire and are re-issued.
func (u *AuthUsecase) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return u.users.UpdateRole(ctx, userID, role)
}

// NormalizeEmail is the single place emails are canonicalized before
// storage or lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validPassword requires at least 8 characters, one uppercase letter and
// one digit.
func validPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}
