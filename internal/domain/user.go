package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserExists is returned when a username or email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// User is an account that owns activities, at most one reduction target,
// and any number of generated weekly summaries.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository stores accounts for registration and login.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByLogin(ctx context.Context, usernameOrEmail string) (*User, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}
