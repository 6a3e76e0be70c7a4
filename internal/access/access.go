// Package access is the single owner-or-admin authorization gate. Services
// call Authorize before every operation that exposes or mutates a resource
// owned by a user, instead of scattering role checks across handlers.
package access

import (
	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/model"
)

// Authorize allows the resource owner and any admin principal; everyone else
// gets errs.ErrForbidden.
func Authorize(p model.Principal, ownerID uuid.UUID) error {
	if p.IsAdmin() || p.UserID == ownerID {
		return nil
	}
	return errs.ErrForbidden
}

// RequireAdmin allows only admin principals.
func RequireAdmin(p model.Principal) error {
	if p.IsAdmin() {
		return nil
	}
	return errs.ErrForbidden
}
