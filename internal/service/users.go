package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/access"
	"github.com/mbaudry/moustass-web/internal/crypto"
	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

// ProfileUpdate is a partial self-service mutation; only contact fields.
// A nil field leaves the stored value untouched.
type ProfileUpdate struct {
	Email    *string
	FullName *string
}

// AdminUserInput creates an account through the admin surface, with an
// explicit role.
type AdminUserInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     model.Role
}

// AdminUserUpdate is a partial admin mutation. Password, when set, is hashed
// before storage.
type AdminUserUpdate struct {
	Email    *string
	FullName *string
	Role     *model.Role
	IsActive *bool
	Password *string
}

// UserService covers profile self-service and admin account management.
type UserService interface {
	// Get returns a user visible to the principal (self, or anyone for admins).
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error)
	// UpdateProfile changes the caller's own contact fields.
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*model.User, error)
	// List returns a page of users. Admin only.
	List(ctx context.Context, p model.Principal, page, pageSize int) ([]model.User, int, error)
	// Create adds an account with an explicit role. Admin only.
	Create(ctx context.Context, p model.Principal, in AdminUserInput, meta RequestMeta) (*model.User, error)
	// Update applies a partial mutation to any account. Admin only.
	Update(ctx context.Context, p model.Principal, id uuid.UUID, upd AdminUserUpdate, meta RequestMeta) (*model.User, error)
	// Delete removes an account. Admin only; admins cannot delete themselves.
	Delete(ctx context.Context, p model.Principal, id uuid.UUID, meta RequestMeta) error
}

type UserServiceImpl struct {
	users repository.UserRepository
	logs  repository.AccessLogRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, logs repository.AccessLogRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users, logs: logs}
}

func (s *UserServiceImpl) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error) {
	if err := access.Authorize(p, id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*model.User, error) {
	if upd.Email != nil && *upd.Email == "" {
		return nil, fmt.Errorf("%w: empty email", errs.ErrValidation)
	}
	ru := repository.UserUpdate{Email: upd.Email, FullName: upd.FullName}
	if ru.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", errs.ErrValidation)
	}
	if err := s.users.Update(ctx, userID, ru); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserServiceImpl) List(ctx context.Context, p model.Principal, page, pageSize int) ([]model.User, int, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	limit, offset := pageWindow(page, pageSize)
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserServiceImpl) Create(ctx context.Context, p model.Principal, in AdminUserInput, meta RequestMeta) (*model.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	switch {
	case in.Username == "" || in.Email == "":
		return nil, fmt.Errorf("%w: empty username or email", errs.ErrValidation)
	case len(in.Password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", errs.ErrValidation, in.Role)
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
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit(ctx, &uid, model.ActionUserUpdate, meta)
	return u, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, p model.Principal, id uuid.UUID, upd AdminUserUpdate, meta RequestMeta) (*model.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", errs.ErrValidation, *upd.Role)
	}
	ru := repository.UserUpdate{
		Email:    upd.Email,
		FullName: upd.FullName,
		Role:     upd.Role,
		IsActive: upd.IsActive,
	}
	if upd.Password != nil {
		if len(*upd.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
		}
		hash, err := crypto.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		ru.PasswordHash = &hash
	}
	if ru.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", errs.ErrValidation)
	}
	if err := s.users.Update(ctx, id, ru); err != nil {
		return nil, err
	}
	s.audit(ctx, &id, model.ActionUserUpdate, meta)
	return s.users.GetByID(ctx, id)
}

func (s *UserServiceImpl) Delete(ctx context.Context, p model.Principal, id uuid.UUID, meta RequestMeta) error {
	if err := access.RequireAdmin(p); err != nil {
		return err
	}
	if p.UserID == id {
		return fmt.Errorf("%w: cannot delete own account", errs.ErrValidation)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, &id, model.ActionUserDelete, meta)
	return nil
}

func (s *UserServiceImpl) audit(ctx context.Context, userID *uuid.UUID, action string, meta RequestMeta) {
	_ = s.logs.Insert(ctx, &model.AccessLog{
		UserID:    userID,
		Action:    action,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})
}

// pageWindow converts 1-based page/pageSize into limit/offset with defaults
// and an upper bound on the page size.
func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = 10
	case pageSize > 100:
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
