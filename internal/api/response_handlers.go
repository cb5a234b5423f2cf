package api

import (
	"net/http"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/middleware"
	"github.com/mmynk/formbuilder/internal/service"
)

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	formID, err := queryID(r, "form")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resps, err := s.responses.ListResponses(r.Context(), p, formID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(resps, toResponse))
}

func (s *Server) handleCreateResponse(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Form == nil {
		s.writeError(w, r, &service.Error{Kind: service.KindValidation, Message: "form is required"})
		return
	}
	resp, err := s.responses.Submit(r.Context(), p, *req.Form, req.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(resp))
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.responses.GetResponse(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(resp))
}

// handleUpdateResponse replaces response_data. A PATCH without
// response_data leaves the response unchanged.
func (s *Server) handleUpdateResponse(partial bool) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
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

		if partial && len(req.Data) == 0 {
			resp, err := s.responses.GetResponse(r.Context(), p, id)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toResponse(resp))
			return
		}

		resp, err := s.responses.UpdateResponse(r.Context(), p, id, req.Data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(resp))
	}
}

func (s *Server) handleDeleteResponse(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.responses.DeleteResponse(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
