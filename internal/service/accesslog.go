package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/access"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

// AccessLogService exposes the audit trail and its retention policy.
type AccessLogService interface {
	// List returns a page of entries, newest first. Admin only.
	List(ctx context.Context, p model.Principal, page, pageSize int) ([]model.AccessLog, error)
	// ListByUser returns one user's entries, owner-or-admin.
	ListByUser(ctx context.Context, p model.Principal, userID uuid.UUID, page, pageSize int) ([]model.AccessLog, error)
	// Prune removes entries older than the retention window.
	Prune(ctx context.Context) (int64, error)
}

type AccessLogServiceImpl struct {
	logs          repository.AccessLogRepository
	retentionDays int
}

// NewAccessLogService constructs AccessLogService with the retention window
// in days.
func NewAccessLogService(logs repository.AccessLogRepository, retentionDays int) *AccessLogServiceImpl {
	return &AccessLogServiceImpl{logs: logs, retentionDays: retentionDays}
}

func (s *AccessLogServiceImpl) List(ctx context.Context, p model.Principal, page, pageSize int) ([]model.AccessLog, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	limit, offset := pageWindow(page, pageSize)
	return s.logs.List(ctx, limit, offset)
}

func (s *AccessLogServiceImpl) ListByUser(ctx context.Context, p model.Principal, userID uuid.UUID, page, pageSize int) ([]model.AccessLog, error) {
	if err := access.Authorize(p, userID); err != nil {
		return nil, err
	}
	limit, offset := pageWindow(page, pageSize)
	return s.logs.ListByUser(ctx, userID, limit, offset)
}

func (s *AccessLogServiceImpl) Prune(ctx context.Context) (int64, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	return s.logs.DeleteOlderThan(ctx, s.retentionDays)
}
