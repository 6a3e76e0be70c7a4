package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/token"
)

// errorBody is the JSON error envelope. IntegrityError flags records whose
// digest check failed; Stack is only populated in dev mode.
type errorBody struct {
	Message        string `json:"message"`
	IntegrityError bool   `json:"integrity_error,omitempty"`
	Stack          string `json:"stack,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

// writeError maps layered errors onto HTTP statuses once, at the boundary.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	body := errorBody{}
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrResetToken):
		status = http.StatusBadRequest
		body.Message = err.Error()
	case errors.Is(err, errs.ErrUnauthorized),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrMalformed),
		errors.Is(err, token.ErrInvalid):
		status = http.StatusUnauthorized
		body.Message = "unauthorized"
	case errors.Is(err, errs.ErrForbidden):
		status = http.StatusForbidden
		body.Message = "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
		body.Message = "not found"
	case errors.Is(err, errs.ErrAlreadyExists):
		status = http.StatusConflict
		body.Message = "already exists"
	case errors.Is(err, errs.ErrRateLimited):
		status = http.StatusTooManyRequests
		body.Message = "too many attempts, try again later"
	case errors.Is(err, errs.ErrIntegrity):
		status = http.StatusInternalServerError
		body.Message = "record integrity check failed"
		body.IntegrityError = true
	case errors.Is(err, errs.ErrDecrypt):
		status = http.StatusInternalServerError
		body.Message = "record could not be decrypted"
	default:
		status = http.StatusInternalServerError
		body.Message = "internal error"
		s.log.Error("internal error", zap.Error(err))
		if s.devMode {
			body.Message = err.Error()
			body.Stack = string(debug.Stack())
		}
	}
	s.writeJSON(w, status, body)
}

// decodeJSON reads a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", errs.ErrValidation)
	}
	return nil
}
