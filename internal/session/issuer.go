// Package session issues and validates signed, time-bounded session
// assertions. Assertions are stateless: validity is purely a function of
// the signature and the embedded expiry, so there is no revocation —
// callers that need tighter guarantees shorten the TTL.
package session

import (
	"errors"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the validated content of a session assertion.
type Claims struct {
	Subject string // the credential's email
	Role    domain.Role
}

// Issuer signs and verifies session assertions with a process-wide key.
// Constructed once at startup from config and passed by reference; no
// package-level state.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	return &Issuer{key: key, ttl: ttl}
}

// Issue produces a signed HS256 assertion for the subject and role with
// an absolute expiry of now + ttl.
func (i *Issuer) Issue(subject string, role domain.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.key)
}

// Validate verifies the signature and expiry and returns the embedded
// identity and role. Any failure — bad signature, malformed payload,
// elapsed expiry — surfaces as domain.ErrInvalidCredential.
func (i *Issuer) Validate(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredential
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, domain.ErrInvalidCredential
	}
	roleStr, ok := claims["role"].(string)
	role := domain.Role(roleStr)
	if !ok || !role.Valid() {
		return nil, domain.ErrInvalidCredential
	}

	return &Claims{Subject: subject, Role: role}, nil
}
