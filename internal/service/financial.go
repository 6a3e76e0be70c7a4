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

// FinancialInput is the payload for storing an encrypted financial note.
type FinancialInput struct {
	DataType string
	Content  string
	Notes    string
}

// FinancialContent is a decrypted, verified payload.
type FinancialContent struct {
	DataType string
	Content  string
}

// FinancialUpdate changes a record. Content nil leaves the sealed payload
// untouched; non-nil reseals content and digest together.
type FinancialUpdate struct {
	Content *string
	Notes   string
}

// FinancialService stores and serves encrypted financial notes.
type FinancialService interface {
	Create(ctx context.Context, p model.Principal, in FinancialInput) (*model.FinancialRecord, error)
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.FinancialRecord, error)
	// GetContent opens the sealed payload and verifies its digest.
	GetContent(ctx context.Context, p model.Principal, id uuid.UUID) (FinancialContent, error)
	// ListByUser filters by dataType when non-empty.
	ListByUser(ctx context.Context, p model.Principal, ownerID uuid.UUID, dataType string, page, pageSize int) ([]model.FinancialRecord, int, error)
	Update(ctx context.Context, p model.Principal, id uuid.UUID, upd FinancialUpdate) (*model.FinancialRecord, error)
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) error
}

type FinancialServiceImpl struct {
	repo repository.FinancialRepository
	key  []byte
}

// NewFinancialService constructs FinancialService with the 32-byte sealing key.
func NewFinancialService(repo repository.FinancialRepository, key []byte) *FinancialServiceImpl {
	return &FinancialServiceImpl{repo: repo, key: key}
}

func (s *FinancialServiceImpl) Create(ctx context.Context, p model.Principal, in FinancialInput) (*model.FinancialRecord, error) {
	switch {
	case in.DataType == "":
		return nil, fmt.Errorf("%w: empty data_type", errs.ErrValidation)
	case in.Content == "":
		return nil, fmt.Errorf("%w: empty content", errs.ErrValidation)
	}

	envelope, err := crypto.Seal([]byte(in.Content), s.key)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rec := &model.FinancialRecord{
		ID:               id,
		UserID:           p.UserID,
		DataType:         in.DataType,
		EncryptedContent: envelope,
		HashVerify:       crypto.Digest([]byte(in.Content)),
		Notes:            in.Notes,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FinancialServiceImpl) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.FinancialRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FinancialServiceImpl) GetContent(ctx context.Context, p model.Principal, id uuid.UUID) (FinancialContent, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return FinancialContent{}, err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return FinancialContent{}, err
	}
	sealed, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return FinancialContent{}, err
	}
	plain, err := crypto.Open(sealed.Envelope, s.key)
	if err != nil {
		return FinancialContent{}, err
	}
	if !crypto.VerifyDigest(plain, sealed.Digest) {
		return FinancialContent{}, errs.ErrIntegrity
	}
	return FinancialContent{DataType: rec.DataType, Content: string(plain)}, nil
}

func (s *FinancialServiceImpl) ListByUser(ctx context.Context, p model.Principal, ownerID uuid.UUID, dataType string, page, pageSize int) ([]model.FinancialRecord, int, error) {
	if err := access.Authorize(p, ownerID); err != nil {
		return nil, 0, err
	}
	limit, offset := pageWindow(page, pageSize)
	recs, err := s.repo.ListByOwner(ctx, ownerID, dataType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByOwner(ctx, ownerID, dataType)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Update reseals content and digest together when new content is provided, so
// the stored digest always matches the stored ciphertext.
func (s *FinancialServiceImpl) Update(ctx context.Context, p model.Principal, id uuid.UUID, upd FinancialUpdate) (*model.FinancialRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return nil, err
	}

	if upd.Content != nil {
		if *upd.Content == "" {
			return nil, fmt.Errorf("%w: empty content", errs.ErrValidation)
		}
		envelope, err := crypto.Seal([]byte(*upd.Content), s.key)
		if err != nil {
			return nil, err
		}
		sealed := repository.SealedContent{Envelope: envelope, Digest: crypto.Digest([]byte(*upd.Content))}
		if err := s.repo.UpdateContent(ctx, id, sealed, upd.Notes); err != nil {
			return nil, err
		}
	} else if err := s.repo.UpdateNotes(ctx, id, upd.Notes); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *FinancialServiceImpl) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
