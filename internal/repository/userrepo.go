// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/model"
)

// UserUpdate is a partial user mutation; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	FullName     *string
	Role         *model.Role
	IsActive     *bool
	PasswordHash *string
}

// Empty reports whether the update would touch no columns.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.FullName == nil && u.Role == nil && u.IsActive == nil && u.PasswordHash == nil
}

// UserRepository provides CRUD access to user accounts.
type UserRepository interface {
	// Create inserts a new user; errs.ErrAlreadyExists on username/email collision.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByResetToken loads a user whose reset token matches and has not expired.
	GetByResetToken(ctx context.Context, resetToken string) (*model.User, error)
	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
	// Update applies a partial mutation; errs.ErrNotFound if the row is gone.
	Update(ctx context.Context, id uuid.UUID, upd UserUpdate) error
	// SetPassword replaces the stored credential hash and clears any reset token.
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// SetResetToken stores a reset token with its expiry.
	SetResetToken(ctx context.Context, id uuid.UUID, resetToken string, expiry time.Time) error
	// TouchLastLogin stamps last_login with the current time.
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	// Delete removes the user row. Hard delete; no versioning.
	Delete(ctx context.Context, id uuid.UUID) error
}
