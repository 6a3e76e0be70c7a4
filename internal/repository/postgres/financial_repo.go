package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

// FinancialRepo implements FinancialRepository using PostgreSQL.
type FinancialRepo struct{ db *DB }

// NewFinancialRepo constructs a financial record repository.
func NewFinancialRepo(db *DB) *FinancialRepo { return &FinancialRepo{db: db} }

// Create inserts a record with its sealed payload in one statement.
func (r *FinancialRepo) Create(ctx context.Context, rec *model.FinancialRecord) error {
	const q = `
INSERT INTO financial_data (id, user_id, data_type, encrypted_content, hash_verification, notes)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q,
		rec.ID, rec.UserID, rec.DataType, rec.EncryptedContent, rec.HashVerify, rec.Notes)
	return err
}

// GetByID loads record metadata without touching the payload columns.
func (r *FinancialRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.FinancialRecord, error) {
	const q = `
SELECT id, user_id, data_type, notes, created_at, modified_at
FROM financial_data WHERE id=$1`
	var rec model.FinancialRecord
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&rec.ID, &rec.UserID, &rec.DataType, &rec.Notes, &rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetContent loads only the envelope and its digest.
func (r *FinancialRepo) GetContent(ctx context.Context, id uuid.UUID) (repository.SealedContent, error) {
	const q = `SELECT encrypted_content, hash_verification FROM financial_data WHERE id=$1`
	var sc repository.SealedContent
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&sc.Envelope, &sc.Digest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.SealedContent{}, errs.ErrNotFound
		}
		return repository.SealedContent{}, err
	}
	return sc, nil
}

// ListByOwner returns records newest first, optionally filtered by data type.
func (r *FinancialRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, dataType string, limit, offset int) ([]model.FinancialRecord, error) {
	b := qb.Select("id", "user_id", "data_type", "notes", "created_at", "modified_at").
		From("financial_data").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if dataType != "" {
		b = b.Where(sq.Eq{"data_type": dataType})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FinancialRecord
	for rows.Next() {
		var rec model.FinancialRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.DataType, &rec.Notes, &rec.CreatedAt, &rec.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByOwner returns the owner's total, optionally filtered by data type.
func (r *FinancialRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID, dataType string) (int, error) {
	b := qb.Select("COUNT(*)").From("financial_data").Where(sq.Eq{"user_id": ownerID})
	if dataType != "" {
		b = b.Where(sq.Eq{"data_type": dataType})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.Pool.QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}

// UpdateContent replaces envelope, digest and notes together and stamps
// modified_at. Ciphertext and digest never diverge.
func (r *FinancialRepo) UpdateContent(ctx context.Context, id uuid.UUID, sealed repository.SealedContent, notes string) error {
	const q = `
UPDATE financial_data
SET encrypted_content=$2, hash_verification=$3, notes=$4, modified_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, sealed.Envelope, sealed.Digest, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateNotes changes metadata only, leaving the sealed payload untouched.
func (r *FinancialRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	const q = `UPDATE financial_data SET notes=$2, modified_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the record.
func (r *FinancialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM financial_data WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
