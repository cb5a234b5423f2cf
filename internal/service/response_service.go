package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// ResponseService stores form submissions. Response documents are not
// checked against the form's structure.
//
// A response is visible to its submitter, the owner of its form and admins.
// The same three may delete it; only the submitter or an admin may edit it.
type ResponseService struct {
	store ResponseStore
}

// ResponseStore is the storage the response flows need.
type ResponseStore interface {
	storage.FormStore
	storage.ResponseStore
}

// NewResponseService creates a new ResponseService.
func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{store: store}
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// Submit stores a response to formID from the caller.
func (s *ResponseService) Submit(ctx context.Context, p auth.Principal, formID int64, data json.RawMessage) (*models.FormResponse, error) {
	if _, err := s.store.GetForm(ctx, formID); err != nil {
		return nil, lookupErr("Form", err)
	}
	if err := requireObject("response_data", data); err != nil {
		return nil, err
	}

	resp := &models.FormResponse{
		FormID:       formID,
		UserID:       p.UserID,
		ResponseData: compact(data),
	}
	if err := s.store.CreateResponse(ctx, resp); err != nil {
		slog.Error("Submit failed", "form_id", formID, "error", err)
		return nil, err
	}

	slog.Info("Response submitted", "response_id", resp.ID, "form_id", formID, "user_id", p.UserID)
	return resp, nil
}

func (s *ResponseService) canView(ctx context.Context, p auth.Principal, resp *models.FormResponse) (bool, error) {
	if p.Owns(resp.UserID) {
		return true, nil
	}
	form, err := s.store.GetForm(ctx, resp.FormID)
	if err != nil {
		return false, lookupErr("Form", err)
	}
	return form.CreatedBy == p.UserID, nil
}

// GetResponse returns one response.
func (s *ResponseService) GetResponse(ctx context.Context, p auth.Principal, id int64) (*models.FormResponse, error) {
	resp, err := s.store.GetResponse(ctx, id)
	if err != nil {
		return nil, lookupErr("Response", err)
	}
	ok, err := s.canView(ctx, p, resp)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, forbidden("you do not have access to this response")
	}
	return resp, nil
}

// ListResponses returns the responses visible to the caller, optionally of
// a single form.
func (s *ResponseService) ListResponses(ctx context.Context, p auth.Principal, formID *int64) ([]*models.FormResponse, error) {
	filter := storage.ResponseFilter{FormID: formID}
	if !p.IsAdmin {
		filter.VisibleTo = &p.UserID
	}
	return s.store.ListResponses(ctx, filter)
}

// UpdateResponse replaces the response document.
func (s *ResponseService) UpdateResponse(ctx context.Context, p auth.Principal, id int64, data json.RawMessage) (*models.FormResponse, error) {
	resp, err := s.store.GetResponse(ctx, id)
	if err != nil {
		return nil, lookupErr("Response", err)
	}
	if !p.Owns(resp.UserID) {
		return nil, forbidden("only the submitter can edit this response")
	}
	if err := requireObject("response_data", data); err != nil {
		return nil, err
	}

	resp.ResponseData = compact(data)
	if err := s.store.UpdateResponse(ctx, resp); err != nil {
		return nil, lookupErr("Response", err)
	}
	return resp, nil
}

// DeleteResponse removes a response.
func (s *ResponseService) DeleteResponse(ctx context.Context, p auth.Principal, id int64) error {
	resp, err := s.store.GetResponse(ctx, id)
	if err != nil {
		return lookupErr("Response", err)
	}
	ok, err := s.canView(ctx, p, resp)
	if err != nil {
		return err
	}
	if !ok {
		return forbidden("you do not have permission to delete this response")
	}
	if err := s.store.DeleteResponse(ctx, id); err != nil {
		return lookupErr("Response", err)
	}
	slog.Info("Response deleted", "response_id", id, "user_id", p.UserID)
	return nil
}
