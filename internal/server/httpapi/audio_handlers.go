package httpapi

import (
	"net/http"

	"github.com/mbaudry/moustass-web/internal/service"
)

func (s *Server) handleCreateAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename        string `json:"filename"`
		AudioData       string `json:"audio_data"`
		Description     string `json:"description"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.audio.Create(r.Context(), sess.Principal, service.AudioInput{
		Filename:        req.Filename,
		Data:            req.AudioData,
		Description:     req.Description,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"record": rec})
}

func (s *Server) handleListAudio(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	page, limit := pageParams(r)
	recs, total, err := s.audio.ListByUser(r.Context(), sess.Principal, ownerID, page, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": recs, "total": total})
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.audio.Get(r.Context(), sess.Principal, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *Server) handleGetAudioData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	data, err := s.audio.GetData(r.Context(), sess.Principal, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"audio_data":         data,
		"integrity_verified": true,
	})
}

func (s *Server) handleUpdateAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	rec, err := s.audio.UpdateDescription(r.Context(), sess.Principal, id, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, _ := sessionFromCtx(r.Context())
	if err := s.audio.Delete(r.Context(), sess.Principal, id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
