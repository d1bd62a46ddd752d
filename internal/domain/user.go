package domain

import (
	"context"
	"time"
)

// User is a registered account. Users are created by registration and are
// never renamed or deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // encoded KDF output, see internal/auth/password
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
// Create must return ErrUsernameTaken when the storage layer rejects a
// duplicate username.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}
