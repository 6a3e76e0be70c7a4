package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/repository"
)

func testFinancial() *model.FinancialRecord {
	return &model.FinancialRecord{
		ID:               uuid.Must(uuid.NewV4()),
		UserID:           uuid.Must(uuid.NewV4()),
		DataType:         "investment",
		EncryptedContent: "aabb:ccdd",
		HashVerify:       "deadbeef",
		Notes:            "Q3 portfolio",
		CreatedAt:        time.Now(),
	}
}

func TestFinancialRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFinancialRepo(db)
	rec := testFinancial()

	mock.ExpectExec(`INSERT INTO financial_data .+ VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs(rec.ID, rec.UserID, rec.DataType, rec.EncryptedContent, rec.HashVerify, rec.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(context.Background(), rec))
}

func TestFinancialRepo_ListByOwner_TypeFilter(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFinancialRepo(db)
	rec := testFinancial()

	// Unfiltered.
	mock.ExpectQuery(`SELECT id, user_id, data_type, notes, created_at, modified_at FROM financial_data WHERE user_id = \$1 ORDER BY created_at DESC LIMIT 10 OFFSET 0`).
		WithArgs(rec.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "data_type", "notes", "created_at", "modified_at"}).
			AddRow(rec.ID, rec.UserID, rec.DataType, rec.Notes, rec.CreatedAt, nil))
	out, err := r.ListByOwner(context.Background(), rec.UserID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Nil(t, out[0].ModifiedAt)

	// Filtered by data type.
	mock.ExpectQuery(`WHERE user_id = \$1 AND data_type = \$2`).
		WithArgs(rec.UserID, "investment").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "data_type", "notes", "created_at", "modified_at"}))
	out, err = r.ListByOwner(context.Background(), rec.UserID, "investment", 10, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFinancialRepo_CountByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFinancialRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM financial_data WHERE user_id = \$1`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(15))
	n, err := r.CountByOwner(context.Background(), owner, "")
	require.NoError(t, err)
	require.Equal(t, 15, n)

	mock.ExpectQuery(`WHERE user_id = \$1 AND data_type = \$2`).
		WithArgs(owner, "stock").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	n, err = r.CountByOwner(context.Background(), owner, "stock")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestFinancialRepo_UpdateContent_RewritesDigestWithCiphertext(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFinancialRepo(db)
	id := uuid.Must(uuid.NewV4())
	sealed := repository.SealedContent{Envelope: "eeff:0011", Digest: "cafef00d"}

	mock.ExpectExec(`UPDATE financial_data SET encrypted_content=\$2, hash_verification=\$3, notes=\$4, modified_at=now\(\) WHERE id=\$1`).
		WithArgs(id, sealed.Envelope, sealed.Digest, "updated notes").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.UpdateContent(context.Background(), id, sealed, "updated notes"))

	mock.ExpectExec(`UPDATE financial_data SET encrypted_content=`).
		WithArgs(id, sealed.Envelope, sealed.Digest, "updated notes").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.UpdateContent(context.Background(), id, sealed, "updated notes"), errs.ErrNotFound)
}

func TestFinancialRepo_UpdateNotes_And_GetContent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFinancialRepo(db)
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE financial_data SET notes=\$2, modified_at=now\(\) WHERE id=\$1`).
		WithArgs(id, "only notes").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.UpdateNotes(context.Background(), id, "only notes"))

	mock.ExpectQuery(`SELECT encrypted_content, hash_verification FROM financial_data WHERE id=\$1`).
		WithArgs(id).WillReturnError(pgx.ErrNoRows)
	_, err := r.GetContent(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
