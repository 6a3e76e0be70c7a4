package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gofrs/uuid/v5"

	"github.com/mbaudry/moustass-web/internal/errs"
	"github.com/mbaudry/moustass-web/internal/service"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(r.PathValue(name))
	if err != nil {
		return uuid.Nil, errs.ErrValidation
	}
	return id, nil
}

// pageParams parses ?page= and ?limit= with 1-based pages.
func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.Get(r.Context(), sess.Principal, sess.Principal.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    *string `json:"email"`
		FullName *string `json:"full_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.UpdateProfile(r.Context(), sess.Principal.UserID, service.ProfileUpdate{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.Get(r.Context(), sess.Principal, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleListUserLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	page, limit := pageParams(r)
	entries, err := s.logs.ListByUser(r.Context(), sess.Principal, id, page, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}
