package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/clubciclismoepn/backend/internal/crypto"
	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/email"
	"github.com/clubciclismoepn/backend/internal/metrics"
	"github.com/clubciclismoepn/backend/internal/repository"
)

type RecoveryUsecase struct {
	users  repository.UserRepository
	tokens repository.RecoveryTokenRepository
	email  email.Sender
	loc    *time.Location
	logger *slog.Logger
}

func NewRecoveryUsecase(
	users repository.UserRepository,
	tokens repository.RecoveryTokenRepository,
	emailSender email.Sender,
	loc *time.Location,
	logger *slog.Logger,
) *RecoveryUsecase {
	return &RecoveryUsecase{
		users:  users,
		tokens: tokens,
		email:  emailSender,
		loc:    loc,
		logger: logger.With("component", "recovery"),
	}
}

// RequestCode issues a one-time 6-digit code for the account and delivers
// it out of band. An unknown email is not an error: the caller must not
// be able to tell registered and unregistered addresses apart.
func (u *RecoveryUsecase) RequestCode(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	value, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	token, err := u.tokens.Create(ctx, &domain.RecoveryToken{
		UserID:    user.ID,
		Value:     value,
		ExpiresAt: time.Now().Add(domain.RecoveryTokenTTL),
	})
	if err != nil {
		// Includes value collisions with an active token; no automatic
		// retry — the user re-requests.
		return fmt.Errorf("store recovery token: %w", err)
	}

	subject, body := email.RecoveryMessage(
		token.Value,
		token.ExpiresAt.In(u.loc).Format("2006-01-02 15:04:05"),
	)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send recovery code: %w", err)
	}

	metrics.RecoveryCodesIssuedTotal.Inc()
	u.logger.InfoContext(ctx, "recovery code issued", "user_id", user.ID, "expires_at", token.ExpiresAt)
	return nil
}

// CheckCode is the non-consuming pre-validation behind the UI: it may be
// called any number of times without affecting the token.
func (u *RecoveryUsecase) CheckCode(ctx context.Context, value string) (domain.TokenStatus, error) {
	token, err := u.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return domain.TokenUnknown, nil
		}
		return domain.TokenUnknown, fmt.Errorf("find token: %w", err)
	}
	return token.Status(time.Now()), nil
}

// ResetPassword redeems the code and sets the new password as one atomic
// unit. A code that is unknown, expired or already spent at redemption
// time fails with domain.ErrTokenInvalid and changes nothing.
func (u *RecoveryUsecase) ResetPassword(ctx context.Context, value, newPassword string) error {
	if !validPassword(newPassword) {
		return domain.ErrWeakPassword
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := u.tokens.Consume(ctx, value, hash); err != nil {
		return err
	}

	u.logger.InfoContext(ctx, "password reset via recovery code")
	return nil
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
