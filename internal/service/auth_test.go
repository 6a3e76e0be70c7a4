package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/crypto"
	"github.com/mbaudry/moustass-web/internal/denylist"
	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/limiter"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
	"github.com/mbaudry/moustass-web/internal/token"
)

type fakeUsers struct {
	byName      map[string]*model.User
	resetTokens map[uuid.UUID]string

	createErr error
	getErr    error
	updateErr error

	lastLoginTouched int
	lastSetPassword  string
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.byName {
		if e.Username == u.Username || e.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byName {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByResetToken(_ context.Context, resetToken string) (*model.User, error) {
	for _, u := range f.byName {
		if rt, ok := f.resetTokens[u.ID]; ok && rt == resetToken {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byName))
	for _, u := range f.byName {
		out = append(out, *u)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) Count(_ context.Context) (int, error) { return len(f.byName), nil }

func (f *fakeUsers) Update(_ context.Context, id uuid.UUID, upd repository.UserUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range f.byName {
		if u.ID != id {
			continue
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.FullName != nil {
			u.FullName = *upd.FullName
		}
		if upd.Role != nil {
			u.Role = *upd.Role
		}
		if upd.IsActive != nil {
			u.IsActive = *upd.IsActive
		}
		if upd.PasswordHash != nil {
			u.PasswordHash = *upd.PasswordHash
		}
		return nil
	}
	return errs.ErrNotFound
}

func (f *fakeUsers) SetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	for _, u := range f.byName {
		if u.ID == id {
			u.PasswordHash = passwordHash
			f.lastSetPassword = passwordHash
			delete(f.resetTokens, id)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeUsers) SetResetToken(_ context.Context, id uuid.UUID, resetToken string, _ time.Time) error {
	if f.resetTokens == nil {
		f.resetTokens = map[uuid.UUID]string{}
	}
	f.resetTokens[id] = resetToken
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	f.lastLoginTouched++
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	for name, u := range f.byName {
		if u.ID == id {
			delete(f.byName, name)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeLogs struct {
	entries []model.AccessLog
}

var _ repository.AccessLogRepository = (*fakeLogs)(nil)

func (f *fakeLogs) Insert(_ context.Context, e *model.AccessLog) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLogs) List(_ context.Context, limit, offset int) ([]model.AccessLog, error) {
	if offset >= len(f.entries) {
		return nil, nil
	}
	out := f.entries[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLogs) ListByUser(_ context.Context, userID uuid.UUID, limit, _ int) ([]model.AccessLog, error) {
	var out []model.AccessLog
	for _, e := range f.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLogs) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	n := int64(len(f.entries))
	f.entries = nil
	return n, nil
}

func (f *fakeLogs) last() model.AccessLog { return f.entries[len(f.entries)-1] }

type fakeLimiter struct {
	allowOK     bool
	allowErr    error
	failBlocked bool

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, nil
}

type fakeMailer struct {
	to      []string
	bodies  []string
	sendErr error
}

func (m *fakeMailer) Send(to, _, body string) error {
	m.to = append(m.to, to)
	m.bodies = append(m.bodies, body)
	return m.sendErr
}

func newAuthService(users *fakeUsers, logs *fakeLogs, lim limiter.Limiter) *AuthServiceImpl {
	return NewAuthService(users, logs, token.NewManager([]byte("secret-key-16byt"), time.Minute),
		lim, denylist.Noop{}, &fakeMailer{})
}

func mustUser(t *testing.T, users *fakeUsers, username, password string, role model.Role, active bool) *model.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{
		ID:           uuid.Must(uuid.NewV4()),
		Username:     username,
		PasswordHash: hash,
		Email:        username + "@example.com",
		Role:         role,
		IsActive:     active,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	logs := &fakeLogs{}
	s := newAuthService(users, logs, &fakeLimiter{allowOK: true})
	ctx := context.Background()

	if _, err := s.Register(ctx, RegisterInput{}, RequestMeta{}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, err := s.Register(ctx, RegisterInput{Username: "a", Email: "a@x", Password: "short"}, RequestMeta{}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on short password, got %v", err)
	}

	u, err := s.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x", Password: "longenough", FullName: "Alice"}, RequestMeta{IP: "1.2.3.4"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != model.RoleUser || !u.IsActive {
		t.Fatalf("new user must be an active member: %+v", u)
	}
	if u.PasswordHash == "longenough" || u.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
	if got := logs.last(); got.Action != model.ActionRegister || !got.Success {
		t.Fatalf("register not audited: %+v", got)
	}

	if _, err := s.Register(ctx, RegisterInput{Username: "alice", Email: "other@x", Password: "longenough"}, RequestMeta{}); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	logs := &fakeLogs{}
	lim := &fakeLimiter{allowOK: true}
	s := newAuthService(users, logs, lim)
	ctx := context.Background()
	mustUser(t, users, "alice", "correct-horse", model.RoleUser, true)

	lim.allowOK = false
	if _, err := s.Login(ctx, LoginInput{Username: "alice", Password: "correct-horse"}, RequestMeta{}); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	if _, err := s.Login(ctx, LoginInput{Username: "nobody", Password: "x"}, RequestMeta{}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("unknown user must read as unauthorized, got %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Username: "alice", Password: "wrong"}, RequestMeta{}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("wrong password must read as unauthorized, got %v", err)
	}
	if lim.failureCalls != 2 {
		t.Fatalf("failures not fed to limiter: %d", lim.failureCalls)
	}

	lim.failBlocked = true
	if _, err := s.Login(ctx, LoginInput{Username: "alice", Password: "wrong"}, RequestMeta{}); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited once blocked, got %v", err)
	}
	lim.failBlocked = false

	sess, err := s.Login(ctx, LoginInput{Username: "alice", Password: "correct-horse"}, RequestMeta{IP: "1.2.3.4"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token == "" || !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("bad session: %+v", sess)
	}
	if sess.User.Username != "alice" {
		t.Fatalf("wrong user attached: %+v", sess.User)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected limiter reset on success")
	}
	if users.lastLoginTouched == 0 {
		t.Fatalf("expected last_login stamp")
	}
	if got := logs.last(); got.Action != model.ActionLoginAttempt || !got.Success {
		t.Fatalf("successful login not audited: %+v", got)
	}
}

func TestAuth_Login_AdminGateAndInactive(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s := newAuthService(users, &fakeLogs{}, &fakeLimiter{allowOK: true})
	ctx := context.Background()
	mustUser(t, users, "bob", "password-1", model.RoleUser, true)
	mustUser(t, users, "root", "password-1", model.RoleAdmin, true)
	mustUser(t, users, "gone", "password-1", model.RoleUser, false)

	if _, err := s.Login(ctx, LoginInput{Username: "bob", Password: "password-1", LoginType: "admin"}, RequestMeta{}); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-admin on admin login must be forbidden, got %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Username: "root", Password: "password-1", LoginType: "admin"}, RequestMeta{}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Username: "gone", Password: "password-1"}, RequestMeta{}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("inactive account must read as unauthorized, got %v", err)
	}
}

func TestAuth_ChangePassword(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	logs := &fakeLogs{}
	s := newAuthService(users, logs, &fakeLimiter{allowOK: true})
	ctx := context.Background()
	u := mustUser(t, users, "alice", "old-password", model.RoleUser, true)

	if err := s.ChangePassword(ctx, u.ID, "old-password", "short", RequestMeta{}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if err := s.ChangePassword(ctx, u.ID, "not-the-one", "new-password-1", RequestMeta{}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized on wrong current, got %v", err)
	}
	if got := logs.last(); got.Action != model.ActionPasswordChange || got.Success {
		t.Fatalf("failed change not audited: %+v", got)
	}

	if err := s.ChangePassword(ctx, u.ID, "old-password", "new-password-1", RequestMeta{}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !crypto.CheckPassword("new-password-1", users.lastSetPassword) {
		t.Fatalf("stored hash does not match new password")
	}
}

func TestAuth_ForgotPassword(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	logs := &fakeLogs{}
	mailer := &fakeMailer{}
	s := NewAuthService(users, logs, token.NewManager([]byte("secret-key-16byt"), time.Minute),
		&fakeLimiter{allowOK: true}, denylist.Noop{}, mailer)
	ctx := context.Background()
	u := mustUser(t, users, "alice", "old-password", model.RoleUser, true)

	if _, err := s.ForgotPassword(ctx, "unknown@example.com", RequestMeta{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown email, got %v", err)
	}

	temp, err := s.ForgotPassword(ctx, u.Email, RequestMeta{})
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(temp) != tempPasswordLen {
		t.Fatalf("temp password length %d, want %d", len(temp), tempPasswordLen)
	}
	if !crypto.CheckPassword(temp, users.lastSetPassword) {
		t.Fatalf("stored hash does not match the temp password")
	}
	if len(mailer.to) != 1 || mailer.to[0] != u.Email {
		t.Fatalf("mail not delivered to owner: %v", mailer.to)
	}
}

func TestAuth_ResetTokenFlow(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	mailer := &fakeMailer{}
	s := NewAuthService(users, &fakeLogs{}, token.NewManager([]byte("secret-key-16byt"), time.Minute),
		&fakeLimiter{allowOK: true}, denylist.Noop{}, mailer)
	ctx := context.Background()
	u := mustUser(t, users, "alice", "old-password", model.RoleUser, true)

	if err := s.RequestReset(ctx, u.Email, RequestMeta{}); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	rt := users.resetTokens[u.ID]
	if rt == "" {
		t.Fatalf("no reset token stored")
	}

	if err := s.ResetPassword(ctx, "bogus", "new-password-1", RequestMeta{}); !errors.Is(err, errs.ErrResetToken) {
		t.Fatalf("want ErrResetToken, got %v", err)
	}
	if err := s.ResetPassword(ctx, rt, "new-password-1", RequestMeta{}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if !crypto.CheckPassword("new-password-1", users.lastSetPassword) {
		t.Fatalf("stored hash does not match the new password")
	}
	// token is single-use
	if err := s.ResetPassword(ctx, rt, "another-pass-1", RequestMeta{}); !errors.Is(err, errs.ErrResetToken) {
		t.Fatalf("reset token must be cleared after use, got %v", err)
	}
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()
	logs := &fakeLogs{}
	s := newAuthService(newFakeUsers(), logs, &fakeLimiter{allowOK: true})

	p := model.Principal{UserID: uuid.Must(uuid.NewV4()), Role: model.RoleUser}
	if err := s.Logout(context.Background(), p, "some-jti", time.Now().Add(time.Hour), RequestMeta{}); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := logs.last(); got.Action != model.ActionLogout || !got.Success {
		t.Fatalf("logout not audited: %+v", got)
	}
}
