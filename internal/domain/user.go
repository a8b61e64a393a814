package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrWeakPassword      = errors.New("password must be at least 8 characters with one uppercase letter and one digit")
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleNormal Role = "Normal"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleNormal
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
