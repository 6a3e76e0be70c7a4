package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

// AudioRepo implements AudioRepository using PostgreSQL.
type AudioRepo struct{ db *DB }

// NewAudioRepo constructs an audio record repository.
func NewAudioRepo(db *DB) *AudioRepo { return &AudioRepo{db: db} }

// Create inserts a record with its sealed payload in one statement.
func (r *AudioRepo) Create(ctx context.Context, rec *model.AudioRecord) error {
	const q = `
INSERT INTO audio_records (id, user_id, filename, encrypted_data, hash_verification, description, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q,
		rec.ID, rec.UserID, rec.Filename, rec.EncryptedData, rec.HashVerify, rec.Description, rec.DurationSeconds)
	return err
}

// GetByID loads record metadata without touching the payload columns.
func (r *AudioRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AudioRecord, error) {
	const q = `
SELECT id, user_id, filename, description, duration_seconds, created_at
FROM audio_records WHERE id=$1`
	var rec model.AudioRecord
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&rec.ID, &rec.UserID, &rec.Filename, &rec.Description, &rec.DurationSeconds, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetContent loads only the envelope and its digest.
func (r *AudioRepo) GetContent(ctx context.Context, id uuid.UUID) (repository.SealedContent, error) {
	const q = `SELECT encrypted_data, hash_verification FROM audio_records WHERE id=$1`
	var sc repository.SealedContent
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&sc.Envelope, &sc.Digest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.SealedContent{}, errs.ErrNotFound
		}
		return repository.SealedContent{}, err
	}
	return sc, nil
}

// ListByOwner returns records newest first.
func (r *AudioRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AudioRecord, error) {
	const q = `
SELECT id, user_id, filename, description, duration_seconds, created_at
FROM audio_records
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AudioRecord
	for rows.Next() {
		var rec model.AudioRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Filename, &rec.Description, &rec.DurationSeconds, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByOwner returns the owner's total record count.
func (r *AudioRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM audio_records WHERE user_id=$1`, ownerID).Scan(&n)
	return n, err
}

// UpdateDescription changes metadata only.
func (r *AudioRepo) UpdateDescription(ctx context.Context, id uuid.UUID, description string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE audio_records SET description=$2 WHERE id=$1`, id, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the record.
func (r *AudioRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM audio_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
