// Package service contains application services for authentication, accounts
// and encrypted records.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/crypto"
	"github.com/mbaudry/moustass-web/internal/denylist"
	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/limiter"
	"github.com/mbaudry/moustass-web/internal/mail"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
	"github.com/mbaudry/moustass-web/internal/token"
)

// RequestMeta carries per-request client details into the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// RegisterInput is the payload for account self-registration.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
}

// LoginInput is the payload for authentication. LoginType "admin" additionally
// requires the admin role.
type LoginInput struct {
	Username  string
	Password  string
	LoginType string
}

// Session is an issued token with the authenticated user attached.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// AuthService defines authentication and credential lifecycle operations.
type AuthService interface {
	// Register creates a new active user account with the "user" role.
	Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*model.User, error)
	// Login authenticates with rate limiting by (username, ip) and issues a session.
	Login(ctx context.Context, in LoginInput, meta RequestMeta) (Session, error)
	// Logout records the event and revokes the token when a denylist is configured.
	Logout(ctx context.Context, p model.Principal, jti string, expiresAt time.Time, meta RequestMeta) error
	// ChangePassword replaces the caller's credential after verifying the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string, meta RequestMeta) error
	// ForgotPassword issues a temporary password and mails it to the account owner.
	ForgotPassword(ctx context.Context, email string, meta RequestMeta) (tempPassword string, err error)
	// RequestReset issues a time-limited reset token and mails it to the account owner.
	RequestReset(ctx context.Context, email string, meta RequestMeta) error
	// ResetPassword consumes a reset token and installs a new credential.
	ResetPassword(ctx context.Context, resetToken, newPassword string, meta RequestMeta) error
}

type AuthServiceImpl struct {
	users   repository.UserRepository
	logs    repository.AccessLogRepository
	tokens  *token.Manager
	lim     limiter.Limiter
	revoked denylist.Denylist
	mailer  mail.Sender
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, logs repository.AccessLogRepository,
	tokens *token.Manager, lim limiter.Limiter, revoked denylist.Denylist, mailer mail.Sender) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, logs: logs, tokens: tokens, lim: lim, revoked: revoked, mailer: mailer}
}

const (
	minPasswordLen  = 8
	resetTokenTTL   = time.Hour
	tempPasswordLen = 12
)

// Register creates an active account with the "user" role. Role escalation
// only happens through the admin surface.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*model.User, error) {
	switch {
	case in.Username == "":
		return nil, fmt.Errorf("%w: empty username", errs.ErrValidation)
	case in.Email == "":
		return nil, fmt.Errorf("%w: empty email", errs.ErrValidation)
	case len(in.Password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uid,
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FullName:     in.FullName,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit(ctx, &u.ID, model.ActionRegister, meta, true)
	return u, nil
}

// Login authenticates the user. Failures are indistinguishable between an
// unknown username and a wrong password, and both feed the limiter.
func (s *AuthServiceImpl) Login(ctx context.Context, in LoginInput, meta RequestMeta) (Session, error) {
	if in.Username == "" || in.Password == "" {
		return Session{}, fmt.Errorf("%w: empty username or password", errs.ErrValidation)
	}
	ipHash := limiter.HashIP(meta.IP)

	allowed, _, err := s.lim.Allow(ctx, in.Username, ipHash)
	if err != nil {
		return Session{}, err
	}
	if !allowed {
		s.audit(ctx, nil, model.ActionLoginAttempt, meta, false)
		return Session{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil || !crypto.CheckPassword(in.Password, u.PasswordHash) {
		s.audit(ctx, nil, model.ActionLoginAttempt, meta, false)
		if blocked, _, ferr := s.lim.Failure(ctx, in.Username, ipHash); ferr == nil && blocked {
			return Session{}, errs.ErrRateLimited
		}
		// hide whether the username exists
		return Session{}, errs.ErrUnauthorized
	}
	if !u.IsActive {
		s.audit(ctx, &u.ID, model.ActionLoginAttempt, meta, false)
		return Session{}, errs.ErrUnauthorized
	}
	if in.LoginType == "admin" && u.Role != model.RoleAdmin {
		s.audit(ctx, &u.ID, model.ActionLoginAttempt, meta, false)
		return Session{}, errs.ErrForbidden
	}

	_ = s.lim.Success(ctx, in.Username, ipHash)
	_ = s.users.TouchLastLogin(ctx, u.ID)

	signed, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, err
	}
	s.audit(ctx, &u.ID, model.ActionLoginAttempt, meta, true)
	return Session{Token: signed, ExpiresAt: exp, User: *u}, nil
}

// Logout records the event and, when a denylist backend is configured,
// revokes the token for its remaining lifetime.
func (s *AuthServiceImpl) Logout(ctx context.Context, p model.Principal, jti string, expiresAt time.Time, meta RequestMeta) error {
	if err := s.revoked.Revoke(ctx, jti, time.Until(expiresAt)); err != nil {
		return err
	}
	s.audit(ctx, &p.UserID, model.ActionLogout, meta, true)
	return nil
}

// ChangePassword verifies the current credential before installing a new one.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string, meta RequestMeta) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(current, u.PasswordHash) {
		s.audit(ctx, &userID, model.ActionPasswordChange, meta, false)
		return errs.ErrUnauthorized
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, userID, hash); err != nil {
		return err
	}
	s.audit(ctx, &userID, model.ActionPasswordChange, meta, true)
	return nil
}

// ForgotPassword replaces the credential with a generated temporary password
// and mails it to the account owner. The temporary password is also returned
// to the caller.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string, meta RequestMeta) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	temp, err := generatePassword(tempPasswordLen)
	if err != nil {
		return "", err
	}
	hash, err := crypto.HashPassword(temp)
	if err != nil {
		return "", err
	}
	if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
		return "", err
	}
	_ = s.mailer.Send(u.Email, "Temporary password",
		fmt.Sprintf("Hello %s,\n\nYour temporary password is: %s\n\nPlease change it after signing in.", u.Username, temp))
	s.audit(ctx, &u.ID, model.ActionPasswordReset, meta, true)
	return temp, nil
}

// RequestReset stores a one-hour reset token and mails it to the account owner.
func (s *AuthServiceImpl) RequestReset(ctx context.Context, email string, meta RequestMeta) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	raw, err := crypto.RandBytes(32)
	if err != nil {
		return err
	}
	resetToken := fmt.Sprintf("%x", raw)
	if err := s.users.SetResetToken(ctx, u.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}
	_ = s.mailer.Send(u.Email, "Password reset",
		fmt.Sprintf("Hello %s,\n\nUse this token to reset your password within the next hour: %s", u.Username, resetToken))
	return nil
}

// ResetPassword consumes an unexpired reset token. The token is cleared
// together with the credential swap.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, resetToken, newPassword string, meta RequestMeta) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
	}
	u, err := s.users.GetByResetToken(ctx, resetToken)
	if err != nil {
		return errs.ErrResetToken
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.audit(ctx, &u.ID, model.ActionPasswordReset, meta, true)
	return nil
}

// audit appends an access log entry. Best-effort: auditing must never fail
// the operation it describes.
func (s *AuthServiceImpl) audit(ctx context.Context, userID *uuid.UUID, action string, meta RequestMeta, success bool) {
	_ = s.logs.Insert(ctx, &model.AccessLog{
		UserID:    userID,
		Action:    action,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   success,
	})
}

const passwordCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword builds a random password from an unambiguous charset.
func generatePassword(n int) (string, error) {
	raw, err := crypto.RandBytes(n)
	if err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(out), nil
}
