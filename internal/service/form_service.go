package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// FormService implements form CRUD. Any authenticated user may read forms;
// only the owner or an admin may change or delete them.
type FormService struct {
	store storage.FormStore
}

// FormInput carries form fields from a create or update request.
// Nil means "not provided"; an Identifier of JSON null clears it.
type FormInput struct {
	Title      *string
	Structure  json.RawMessage
	Identifier json.RawMessage
}

// NewFormService creates a new FormService.
func NewFormService(store storage.FormStore) *FormService {
	return &FormService{store: store}
}

func parseIdentifier(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, invalid("identifier must be a string or null")
	}
	return &id, nil
}

func parseStructure(raw json.RawMessage) (fieldtree.Structure, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fieldtree.Structure{}, invalid("form_structure is required")
	}
	s, err := fieldtree.Parse(raw)
	if err != nil {
		return fieldtree.Structure{}, &Error{Kind: KindValidation, Message: "invalid form_structure", Err: err}
	}
	return s, nil
}

// CreateForm creates a form owned by the caller.
func (s *FormService) CreateForm(ctx context.Context, p auth.Principal, in FormInput) (*models.Form, error) {
	slog.Info("CreateForm request received", "user_id", p.UserID)

	if in.Title == nil || *in.Title == "" {
		return nil, invalid("title is required")
	}
	structure, err := parseStructure(in.Structure)
	if err != nil {
		return nil, err
	}
	identifier, err := parseIdentifier(in.Identifier)
	if err != nil {
		return nil, err
	}

	form := &models.Form{
		Title:      *in.Title,
		CreatedBy:  p.UserID,
		Structure:  structure,
		Identifier: identifier,
	}
	if err := s.store.CreateForm(ctx, form); err != nil {
		slog.Error("CreateForm failed", "error", err)
		return nil, err
	}

	slog.Info("Form created", "form_id", form.ID, "fields", structure.Len())
	return form, nil
}

// GetForm returns a form by ID.
func (s *FormService) GetForm(ctx context.Context, _ auth.Principal, id int64) (*models.Form, error) {
	form, err := s.store.GetForm(ctx, id)
	if err != nil {
		return nil, lookupErr("Form", err)
	}
	return form, nil
}

// ListForms returns all forms, or only those created by createdBy.
func (s *FormService) ListForms(ctx context.Context, _ auth.Principal, createdBy *int64) ([]*models.Form, error) {
	return s.store.ListForms(ctx, storage.FormFilter{CreatedBy: createdBy})
}

// UpdateForm replaces (partial=false) or patches a form. The owner never
// changes.
func (s *FormService) UpdateForm(ctx context.Context, p auth.Principal, id int64, in FormInput, partial bool) (*models.Form, error) {
	form, err := s.store.GetForm(ctx, id)
	if err != nil {
		return nil, lookupErr("Form", err)
	}
	if !p.Owns(form.CreatedBy) {
		return nil, forbidden("only the form owner can modify this form")
	}

	if !partial && (in.Title == nil || len(in.Structure) == 0) {
		return nil, invalid("title and form_structure are required")
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, invalid("title must not be empty")
		}
		form.Title = *in.Title
	}
	if len(in.Structure) > 0 {
		structure, err := parseStructure(in.Structure)
		if err != nil {
			return nil, err
		}
		form.Structure = structure
	}
	if len(in.Identifier) > 0 || !partial {
		identifier, err := parseIdentifier(in.Identifier)
		if err != nil {
			return nil, err
		}
		form.Identifier = identifier
	}

	if err := s.store.UpdateForm(ctx, form); err != nil {
		return nil, lookupErr("Form", err)
	}
	slog.Info("Form updated", "form_id", form.ID, "user_id", p.UserID)
	return form, nil
}

// DeleteForm deletes a form and everything attached to it.
func (s *FormService) DeleteForm(ctx context.Context, p auth.Principal, id int64) error {
	form, err := s.store.GetForm(ctx, id)
	if err != nil {
		return lookupErr("Form", err)
	}
	if !p.Owns(form.CreatedBy) {
		return forbidden("only the form owner can delete this form")
	}
	if err := s.store.DeleteForm(ctx, id); err != nil {
		return lookupErr("Form", err)
	}
	slog.Info("Form deleted", "form_id", id, "user_id", p.UserID)
	return nil
}

// Skeleton returns an empty response document shaped like the form.
func (s *FormService) Skeleton(ctx context.Context, p auth.Principal, id int64) (json.RawMessage, error) {
	form, err := s.GetForm(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return fieldtree.Skeleton(form.Structure), nil
}
