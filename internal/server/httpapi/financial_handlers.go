package httpapi

import (
	"net/http"

	"github.com/mbaudry/moustass-web/internal/service"
)

func (s *Server) handleCreateFinancial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DataType string `json:"data_type"`
		Content  string `json:"content"`
		Notes    string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.financial.Create(r.Context(), sess.Principal, service.FinancialInput{
		DataType: req.DataType,
		Content:  req.Content,
		Notes:    req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"record": rec})
}

func (s *Server) handleListFinancial(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	page, limit := pageParams(r)
	recs, total, err := s.financial.ListByUser(r.Context(), sess.Principal, ownerID, r.URL.Query().Get("type"), page, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": recs, "total": total})
}

func (s *Server) handleGetFinancial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.financial.Get(r.Context(), sess.Principal, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *Server) handleGetFinancialContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	content, err := s.financial.GetContent(r.Context(), sess.Principal, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"content":            content.Content,
		"data_type":          content.DataType,
		"integrity_verified": true,
	})
}

func (s *Server) handleUpdateFinancial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Content *string `json:"content"`
		Notes   string  `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.financial.Update(r.Context(), sess.Principal, id, service.FinancialUpdate{
		Content: req.Content,
		Notes:   req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *Server) handleDeleteFinancial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	if err := s.financial.Delete(r.Context(), sess.Principal, id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
