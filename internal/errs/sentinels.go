// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (username or email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication (bad credentials or unusable token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated principal without rights on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrDecrypt indicates a malformed envelope, wrong key, or cipher rejection.
	ErrDecrypt = errors.New("decryption failed")

	// ErrIntegrity indicates a correctly decrypted payload whose digest does not
	// match the stored value. Kept distinct from ErrDecrypt and ErrNotFound so the
	// HTTP layer can flag a compromised record explicitly.
	ErrIntegrity = errors.New("integrity compromised")

	// ErrResetToken indicates an unknown or expired password reset token.
	ErrResetToken = errors.New("invalid or expired reset token")

	// ErrValidation indicates malformed or incomplete input, wrapped with the
	// offending field for the HTTP layer to surface as 400.
	ErrValidation = errors.New("validation")
)
