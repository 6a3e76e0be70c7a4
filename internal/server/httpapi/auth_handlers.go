package httpapi

import (
	"net/http"

	"github.com/mbaudry/moustass-web/internal/service"
)

func (s *Server) meta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{IP: clientIP(r), UserAgent: r.UserAgent()}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	u, err := s.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
	}, s.meta(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		LoginType string `json:"loginType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		LoginType: req.LoginType,
	}, s.meta(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromCtx(r.Context())
	if err := s.auth.Logout(r.Context(), sess.Principal, sess.JTI, sess.ExpiresAt, s.meta(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromCtx(r.Context())
	u, err := s.users.Get(r.Context(), sess.Principal, sess.Principal.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": u})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	if err := s.auth.ChangePassword(r.Context(), sess.Principal.UserID, req.CurrentPassword, req.NewPassword, s.meta(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	temp, err := s.auth.ForgotPassword(r.Context(), req.Email, s.meta(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The temporary password is returned in the body in addition to the mail
	// notification. Kept for parity with existing clients.
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":      "temporary password sent",
		"tempPassword": temp,
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Token, req.NewPassword, s.meta(r)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "password reset"})
}
