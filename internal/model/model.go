// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role of a user account. Exactly one of RoleUser or RoleAdmin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User is a registered account. PasswordHash is a bcrypt opaque string and is
// never serialized to API responses.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Principal is the authenticated identity derived from a verified session token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// AudioRecord is a voice recording stored encrypted at rest. EncryptedData
// holds the iv:ciphertext envelope; HashVerification the SHA-256 hex digest of
// the plaintext that produced it. Both always change together.
type AudioRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Filename        string    `json:"filename"`
	EncryptedData   string    `json:"-"`
	HashVerify      string    `json:"-"`
	Description     string    `json:"description"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// FinancialRecord is an encrypted financial note. ModifiedAt is set on every
// update (content or notes).
type FinancialRecord struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	DataType         string     `json:"data_type"`
	EncryptedContent string     `json:"-"`
	HashVerify       string     `json:"-"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	ModifiedAt       *time.Time `json:"modified_at,omitempty"`
}

// AccessLog is an append-only audit entry for auth-relevant events.
type AccessLog struct {
	ID        int64      `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	Action    string     `json:"action"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	Success   bool       `json:"success"`
	Timestamp time.Time  `json:"timestamp"`
}

// Access log action tags.
const (
	ActionRegister       = "REGISTER"
	ActionLoginAttempt   = "LOGIN_ATTEMPT"
	ActionLogout         = "LOGOUT"
	ActionPasswordChange = "PASSWORD_CHANGE"
	ActionPasswordReset  = "PASSWORD_RESET"
	ActionUserUpdate     = "USER_UPDATE"
	ActionUserDelete     = "USER_DELETE"
)
