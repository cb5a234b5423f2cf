package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// FieldService manages FormField records. Reading is open to any
// authenticated user; writes follow the owning form's permissions.
type FieldService struct {
	store FieldStore
}

// FieldStore is the storage the field flows need.
type FieldStore interface {
	storage.FormStore
	storage.FieldStore
}

// FieldInput carries field record values; nil means "not provided".
// Fields is the nested structure document, if any.
type FieldInput struct {
	FormID   *int64
	Name     *string
	Type     *string
	ItemType *string
	Fields   json.RawMessage
	Comment  *string
}

// NewFieldService creates a new FieldService.
func NewFieldService(store FieldStore) *FieldService {
	return &FieldService{store: store}
}

func (s *FieldService) ownedForm(ctx context.Context, p auth.Principal, formID int64) error {
	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return lookupErr("Form", err)
	}
	if !p.Owns(form.CreatedBy) {
		return forbidden("only the form owner can change its fields")
	}
	return nil
}

// applyFieldInput merges in into field and checks that the result describes a
// well-formed field tree node.
func applyFieldInput(field *models.FormField, in FieldInput) error {
	if in.Name != nil {
		field.Name = *in.Name
	}
	if in.Type != nil {
		field.Type = *in.Type
	}
	if in.ItemType != nil {
		if *in.ItemType == "" {
			field.ItemType = nil
		} else {
			field.ItemType = in.ItemType
		}
	}
	if in.Comment != nil {
		field.Comment = in.Comment
	}
	if len(in.Fields) > 0 {
		if string(in.Fields) == "null" {
			field.Fields = nil
		} else {
			nested, err := fieldtree.Parse(in.Fields)
			if err != nil {
				return &Error{Kind: KindValidation, Message: "invalid fields", Err: err}
			}
			field.Fields = &nested
		}
	}

	if _, err := field.Spec().Field(); err != nil {
		return &Error{Kind: KindValidation, Message: "invalid field definition", Err: err}
	}
	return nil
}

// CreateFormField adds a field record to a form the caller owns.
func (s *FieldService) CreateFormField(ctx context.Context, p auth.Principal, in FieldInput) (*models.FormField, error) {
	if in.FormID == nil {
		return nil, invalid("form is required")
	}
	if in.Name == nil || in.Type == nil {
		return nil, invalid("name and type are required")
	}
	if err := s.ownedForm(ctx, p, *in.FormID); err != nil {
		return nil, err
	}

	field := &models.FormField{FormID: *in.FormID}
	if err := applyFieldInput(field, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateFormField(ctx, field); err != nil {
		return nil, err
	}
	slog.Info("Form field created", "field_id", field.ID, "form_id", field.FormID)
	return field, nil
}

// GetFormField returns one field record.
func (s *FieldService) GetFormField(ctx context.Context, _ auth.Principal, id int64) (*models.FormField, error) {
	field, err := s.store.GetFormField(ctx, id)
	if err != nil {
		return nil, lookupErr("Form field", err)
	}
	return field, nil
}

// ListFormFields returns field records, optionally of one form.
func (s *FieldService) ListFormFields(ctx context.Context, _ auth.Principal, formID *int64) ([]*models.FormField, error) {
	return s.store.ListFormFields(ctx, formID)
}

// UpdateFormField replaces (partial=false) or patches a field record. A
// field cannot move to another form.
func (s *FieldService) UpdateFormField(ctx context.Context, p auth.Principal, id int64, in FieldInput, partial bool) (*models.FormField, error) {
	field, err := s.store.GetFormField(ctx, id)
	if err != nil {
		return nil, lookupErr("Form field", err)
	}
	if err := s.ownedForm(ctx, p, field.FormID); err != nil {
		return nil, err
	}
	if in.FormID != nil && *in.FormID != field.FormID {
		return nil, invalid("a field cannot be moved to another form")
	}
	if !partial {
		if in.Name == nil || in.Type == nil {
			return nil, invalid("name and type are required")
		}
		field.ItemType, field.Fields, field.Comment = nil, nil, nil
	}

	if err := applyFieldInput(field, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateFormField(ctx, field); err != nil {
		return nil, lookupErr("Form field", err)
	}
	return field, nil
}

// DeleteFormField removes a field record.
func (s *FieldService) DeleteFormField(ctx context.Context, p auth.Principal, id int64) error {
	field, err := s.store.GetFormField(ctx, id)
	if err != nil {
		return lookupErr("Form field", err)
	}
	if err := s.ownedForm(ctx, p, field.FormID); err != nil {
		return err
	}
	if err := s.store.DeleteFormField(ctx, id); err != nil {
		return lookupErr("Form field", err)
	}
	return nil
}
