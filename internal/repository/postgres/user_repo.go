package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, password_hash, email, full_name, role, is_active, created_at, last_login`

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, password_hash, email, full_name, role, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PasswordHash, u.Email, u.FullName, u.Role, u.IsActive)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// GetByResetToken selects a user with a matching, unexpired reset token.
func (r *UserRepo) GetByResetToken(ctx context.Context, resetToken string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE reset_token=$1 AND reset_token_expiry > now()`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, resetToken))
}

// List returns users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Update applies a partial mutation using a dynamically built column set.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, upd repository.UserUpdate) error {
	if upd.Empty() {
		return nil
	}
	b := qb.Update("users")
	if upd.Email != nil {
		b = b.Set("email", *upd.Email)
	}
	if upd.FullName != nil {
		b = b.Set("full_name", *upd.FullName)
	}
	if upd.Role != nil {
		b = b.Set("role", *upd.Role)
	}
	if upd.IsActive != nil {
		b = b.Set("is_active", *upd.IsActive)
	}
	if upd.PasswordHash != nil {
		b = b.Set("password_hash", *upd.PasswordHash)
	}
	q, args, err := b.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetPassword replaces the credential hash and clears any pending reset token.
func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `
UPDATE users
SET password_hash=$2, reset_token=NULL, reset_token_expiry=NULL
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetResetToken stores a reset token with its expiry.
func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, resetToken string, expiry time.Time) error {
	const q = `UPDATE users SET reset_token=$2, reset_token_expiry=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, resetToken, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// TouchLastLogin stamps last_login with the current time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE users SET last_login=now() WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

// Delete removes the user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
