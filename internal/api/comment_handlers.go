package api

import (
	"net/http"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/service"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	formID, err := queryID(r, "form")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	comments, err := s.comments.ListComments(r.Context(), p, formID, queryString(r, "field_name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(comments, toComment))
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.comments.CreateComment(r.Context(), p, service.CommentInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toComment(c))
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.comments.GetComment(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComment(c))
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.comments.UpdateComment(r.Context(), p, id, service.CommentInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComment(c))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.comments.DeleteComment(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
