// Package repository provides persistence for user accounts.
package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the username or email is taken
	ErrUserAlreadyExists = errors.New("user already exists")
)

// User is a registered account. Expenses reference it by ID.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines the interface for account persistence.
// Username and email lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
