package domain

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("recovery code is invalid, expired or already used")
	ErrIssueFailed  = errors.New("could not issue recovery code")
)

// RecoveryTokenTTL is how long a recovery code stays redeemable.
const RecoveryTokenTTL = 5 * time.Minute

type TokenStatus string

const (
	TokenValid   TokenStatus = "valid"
	TokenExpired TokenStatus = "expired"
	TokenUnknown TokenStatus = "unknown"
)

// RecoveryToken is a one-time 6-digit code bound to a user. Once is_used
// flips to true the token is terminal and never validates again.
type RecoveryToken struct {
	ID        string
	UserID    string
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// Status reports the token's state at the given instant. A used token
// reports expired regardless of the clock.
func (t *RecoveryToken) Status(now time.Time) TokenStatus {
	if t.IsUsed || now.After(t.ExpiresAt) {
		return TokenExpired
	}
	return TokenValid
}
