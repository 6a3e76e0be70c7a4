package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/model"
)

// SealedContent is a ciphertext envelope with the digest of the plaintext
// that produced it. The two fields are only ever written together.
type SealedContent struct {
	Envelope string
	Digest   string
}

// AudioRepository persists encrypted audio records.
type AudioRepository interface {
	// Create inserts a new record with its sealed payload.
	Create(ctx context.Context, rec *model.AudioRecord) error
	// GetByID loads record metadata; the envelope and digest stay opaque.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AudioRecord, error)
	// GetContent loads only the envelope and digest for decryption.
	GetContent(ctx context.Context, id uuid.UUID) (SealedContent, error)
	// ListByOwner returns records ordered by creation time descending.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.AudioRecord, error)
	// CountByOwner returns the owner's total record count.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	// UpdateDescription changes metadata only; ciphertext and digest are untouched.
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) error
	// Delete removes the record.
	Delete(ctx context.Context, id uuid.UUID) error
}

// FinancialRepository persists encrypted financial records.
type FinancialRepository interface {
	Create(ctx context.Context, rec *model.FinancialRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FinancialRecord, error)
	GetContent(ctx context.Context, id uuid.UUID) (SealedContent, error)
	// ListByOwner filters by dataType when non-empty.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, dataType string, limit, offset int) ([]model.FinancialRecord, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID, dataType string) (int, error)
	// UpdateContent replaces envelope, digest and notes in one statement so a
	// stale digest can never coexist with fresh ciphertext.
	UpdateContent(ctx context.Context, id uuid.UUID, sealed SealedContent, notes string) error
	// UpdateNotes changes metadata only.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
