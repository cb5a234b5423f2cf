package api

import (
	"net/http"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/middleware"
	"github.com/mmynk/formbuilder/internal/service"
)

func presetInput(req presetRequest) service.PresetInput {
	return service.PresetInput{Name: req.Name, FormID: req.Form, Data: req.Data}
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	formID, err := queryID(r, "form")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	presets, err := s.presets.ListPresets(r.Context(), p, formID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(presets, toPreset))
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var req presetRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	preset, err := s.presets.CreatePreset(r.Context(), p, presetInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPreset(preset))
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	preset, err := s.presets.GetPreset(r.Context(), p, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreset(preset))
}

func (s *Server) handleUpdatePreset(partial bool) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req presetRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		preset, err := s.presets.UpdatePreset(r.Context(), p, id, presetInput(req), partial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPreset(preset))
	}
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.presets.DeletePreset(r.Context(), p, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
