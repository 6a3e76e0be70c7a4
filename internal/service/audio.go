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

// AudioInput is the payload for storing a recording. Data is the base64 audio
// payload produced by the client; it is sealed as-is.
type AudioInput struct {
	Filename        string
	Data            string
	Description     string
	DurationSeconds int
}

// AudioService stores and serves encrypted voice recordings. Audio content is
// immutable after creation; only the description may change.
type AudioService interface {
	// Create seals the payload and persists the record under the principal's account.
	Create(ctx context.Context, p model.Principal, in AudioInput) (*model.AudioRecord, error)
	// Get returns record metadata, owner-or-admin.
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.AudioRecord, error)
	// GetData opens the sealed payload and verifies its digest, owner-or-admin.
	GetData(ctx context.Context, p model.Principal, id uuid.UUID) (string, error)
	// ListByUser returns a metadata page plus the owner's total, owner-or-admin.
	ListByUser(ctx context.Context, p model.Principal, ownerID uuid.UUID, page, pageSize int) ([]model.AudioRecord, int, error)
	// UpdateDescription changes metadata only.
	UpdateDescription(ctx context.Context, p model.Principal, id uuid.UUID, description string) (*model.AudioRecord, error)
	// Delete removes the record, owner-or-admin.
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) error
}

type AudioServiceImpl struct {
	repo repository.AudioRepository
	key  []byte
}

// NewAudioService constructs AudioService with the 32-byte sealing key.
func NewAudioService(repo repository.AudioRepository, key []byte) *AudioServiceImpl {
	return &AudioServiceImpl{repo: repo, key: key}
}

func (s *AudioServiceImpl) Create(ctx context.Context, p model.Principal, in AudioInput) (*model.AudioRecord, error) {
	switch {
	case in.Filename == "":
		return nil, fmt.Errorf("%w: empty filename", errs.ErrValidation)
	case in.Data == "":
		return nil, fmt.Errorf("%w: empty audio data", errs.ErrValidation)
	case in.DurationSeconds < 0:
		return nil, fmt.Errorf("%w: negative duration", errs.ErrValidation)
	}

	envelope, err := crypto.Seal([]byte(in.Data), s.key)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rec := &model.AudioRecord{
		ID:              id,
		UserID:          p.UserID,
		Filename:        in.Filename,
		EncryptedData:   envelope,
		HashVerify:      crypto.Digest([]byte(in.Data)),
		Description:     in.Description,
		DurationSeconds: in.DurationSeconds,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *AudioServiceImpl) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.AudioRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetData decrypts the payload and checks it against the stored digest. A
// digest mismatch on a successfully decrypted payload means the ciphertext or
// the digest was tampered with.
func (s *AudioServiceImpl) GetData(ctx context.Context, p model.Principal, id uuid.UUID) (string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return "", err
	}
	sealed, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return "", err
	}
	plain, err := crypto.Open(sealed.Envelope, s.key)
	if err != nil {
		return "", err
	}
	if !crypto.VerifyDigest(plain, sealed.Digest) {
		return "", errs.ErrIntegrity
	}
	return string(plain), nil
}

func (s *AudioServiceImpl) ListByUser(ctx context.Context, p model.Principal, ownerID uuid.UUID, page, pageSize int) ([]model.AudioRecord, int, error) {
	if err := access.Authorize(p, ownerID); err != nil {
		return nil, 0, err
	}
	limit, offset := pageWindow(page, pageSize)
	recs, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (s *AudioServiceImpl) UpdateDescription(ctx context.Context, p model.Principal, id uuid.UUID, description string) (*model.AudioRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDescription(ctx, id, description); err != nil {
		return nil, err
	}
	rec.Description = description
	return rec, nil
}

func (s *AudioServiceImpl) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, rec.UserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
