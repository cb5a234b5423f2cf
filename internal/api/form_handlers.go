package api

import (
	"net/http"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/middleware"
	"github.com/mmynk/formbuilder/internal/service"
)

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	createdBy, err := queryID(r, "created_by")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	forms, err := s.forms.ListForms(r.Context(), p, createdBy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(forms, toForm))
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var req formRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	form, err := s.forms.CreateForm(r.Context(), p, service.FormInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toForm(form))
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	form, err := s.forms.GetForm(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toForm(form))
}

func (s *Server) handleUpdateForm(partial bool) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req formRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		form, err := s.forms.UpdateForm(r.Context(), p, id, service.FormInput(req), partial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toForm(form))
	}
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.DeleteForm(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSkeleton(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.forms.Skeleton(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleSubmit stores a response to the form in the path. The body's
// "form" key, if any, is ignored.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.responses.Submit(r.Context(), p, id, req.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(resp))
}
