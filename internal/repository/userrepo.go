// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/salesgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to login accounts.
type UserRepository interface {
	// Create inserts a new user; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// SetResetToken stores a pending one-time reset token for the user.
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	// ConsumeResetToken replaces the password hash and clears the token in one statement.
	// Unknown or expired tokens yield errs.ErrNotFound.
	ConsumeResetToken(ctx context.Context, token, pwdHash string, now time.Time) (uuid.UUID, error)
}
