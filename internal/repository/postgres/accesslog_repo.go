package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/model"
)

// AccessLogRepo implements AccessLogRepository using PostgreSQL.
type AccessLogRepo struct{ db *DB }

// NewAccessLogRepo constructs an access log repository.
func NewAccessLogRepo(db *DB) *AccessLogRepo { return &AccessLogRepo{db: db} }

// Insert appends one audit entry.
func (r *AccessLogRepo) Insert(ctx context.Context, entry *model.AccessLog) error {
	const q = `
INSERT INTO access_logs (user_id, action, ip_address, user_agent, success)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, entry.UserID, entry.Action, entry.IPAddress, entry.UserAgent, entry.Success)
	return err
}

// List returns entries newest first with usernames joined in. Entries whose
// user was deleted keep a NULL user_id and an empty username.
func (r *AccessLogRepo) List(ctx context.Context, limit, offset int) ([]model.AccessLog, error) {
	const q = `
SELECT l.id, l.user_id, COALESCE(u.username, ''), l.action, l.ip_address, l.user_agent, l.success, l.ts
FROM access_logs l
LEFT JOIN users u ON u.id = l.user_id
ORDER BY l.ts DESC
LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AccessLog
	for rows.Next() {
		var e model.AccessLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.IPAddress, &e.UserAgent, &e.Success, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListByUser returns one user's entries newest first.
func (r *AccessLogRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.AccessLog, error) {
	const q = `
SELECT id, user_id, action, ip_address, user_agent, success, ts
FROM access_logs
WHERE user_id=$1
ORDER BY ts DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AccessLog
	for rows.Next() {
		var e model.AccessLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.IPAddress, &e.UserAgent, &e.Success, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteOlderThan prunes entries older than the given number of days.
func (r *AccessLogRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", days)
	}
	q := fmt.Sprintf(`DELETE FROM access_logs WHERE ts < now() - interval '%d days'`, days)
	tag, err := r.db.Pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
