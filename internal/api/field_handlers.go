package api

import (
	"net/http"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/middleware"
	"github.com/mmynk/formbuilder/internal/service"
)

func fieldInput(req fieldRequest) service.FieldInput {
	return service.FieldInput{
		FormID:   req.Form,
		Name:     req.Name,
		Type:     req.Type,
		ItemType: req.ItemType,
		Fields:   req.Fields,
		Comment:  req.Comment,
	}
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	formID, err := queryID(r, "form")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fields, err := s.fields.ListFormFields(r.Context(), p, formID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(fields, toField))
}

func (s *Server) handleCreateField(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var req fieldRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	field, err := s.fields.CreateFormField(r.Context(), p, fieldInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toField(field))
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	field, err := s.fields.GetFormField(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toField(field))
}

func (s *Server) handleUpdateField(partial bool) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req fieldRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		field, err := s.fields.UpdateFormField(r.Context(), p, id, fieldInput(req), partial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toField(field))
	}
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.fields.DeleteFormField(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
