package httpapi

import (
	"net/http"

	"github.com/mbaudry/moustass-web/internal/model"
	"github.com/mbaudry/moustass-web/internal/service"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromCtx(r.Context())
	page, limit := pageParams(r)
	users, total, err := s.users.List(r.Context(), sess.Principal, page, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": users, "total": total})
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string     `json:"username"`
		Password string     `json:"password"`
		Email    string     `json:"email"`
		FullName string     `json:"full_name"`
		Role     model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.Create(r.Context(), sess.Principal, service.AdminUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}, s.meta(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	s.handleGetUser(w, r)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Email    *string     `json:"email"`
		FullName *string     `json:"full_name"`
		Role     *model.Role `json:"role"`
		IsActive *bool       `json:"is_active"`
		Password *string     `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.Update(r.Context(), sess.Principal, id, service.AdminUserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	}, s.meta(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	if err := s.users.Delete(r.Context(), sess.Principal, id, s.meta(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) handleAdminListLogs(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromCtx(r.Context())
	page, limit := pageParams(r)
	entries, err := s.logs.List(r.Context(), sess.Principal, page, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}
