package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/model"
)

// AccessLogRepository appends and queries the audit trail. Entries are never
// mutated; retention is enforced by DeleteOlderThan.
type AccessLogRepository interface {
	// Insert appends one entry.
	Insert(ctx context.Context, entry *model.AccessLog) error
	// List returns entries newest first, with usernames joined in.
	List(ctx context.Context, limit, offset int) ([]model.AccessLog, error)
	// ListByUser returns one user's entries newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.AccessLog, error)
	// DeleteOlderThan prunes entries older than the given number of days and
	// reports how many were removed.
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
