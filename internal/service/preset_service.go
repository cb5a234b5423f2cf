package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// PresetService manages presets. A preset is private to its creator;
// admins see every preset.
type PresetService struct {
	store PresetStore
}

// PresetStore is the storage the preset flows need.
type PresetStore interface {
	storage.FormStore
	storage.PresetStore
}

// PresetInput carries preset fields; nil means "not provided".
type PresetInput struct {
	Name   *string
	FormID *int64
	Data   json.RawMessage
}

// NewPresetService creates a new PresetService.
func NewPresetService(store PresetStore) *PresetService {
	return &PresetService{store: store}
}

func (s *PresetService) checkForm(ctx context.Context, formID int64) error {
	if _, err := s.store.GetForm(ctx, formID); err != nil {
		return lookupErr("Form", err)
	}
	return nil
}

// CreatePreset creates a preset owned by the caller.
func (s *PresetService) CreatePreset(ctx context.Context, p auth.Principal, in PresetInput) (*models.Preset, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, invalid("name is required")
	}
	if in.FormID == nil {
		return nil, invalid("form is required")
	}
	if err := requireObject("preset_data", in.Data); err != nil {
		return nil, err
	}
	if err := s.checkForm(ctx, *in.FormID); err != nil {
		return nil, err
	}

	preset := &models.Preset{
		Name:       *in.Name,
		CreatedBy:  p.UserID,
		FormID:     *in.FormID,
		PresetData: compact(in.Data),
	}
	if err := s.store.CreatePreset(ctx, preset); err != nil {
		return nil, err
	}
	slog.Info("Preset created", "preset_id", preset.ID, "form_id", preset.FormID, "user_id", p.UserID)
	return preset, nil
}

// GetPreset returns a preset the caller may see.
func (s *PresetService) GetPreset(ctx context.Context, p auth.Principal, id int64) (*models.Preset, error) {
	preset, err := s.store.GetPreset(ctx, id)
	if err != nil {
		return nil, lookupErr("Preset", err)
	}
	if !p.Owns(preset.CreatedBy) {
		return nil, forbidden("you do not have access to this preset")
	}
	return preset, nil
}

// ListPresets returns the caller's presets, optionally for one form.
func (s *PresetService) ListPresets(ctx context.Context, p auth.Principal, formID *int64) ([]*models.Preset, error) {
	filter := storage.PresetFilter{FormID: formID}
	if !p.IsAdmin {
		filter.CreatedBy = &p.UserID
	}
	return s.store.ListPresets(ctx, filter)
}

// UpdatePreset replaces (partial=false) or patches a preset.
func (s *PresetService) UpdatePreset(ctx context.Context, p auth.Principal, id int64, in PresetInput, partial bool) (*models.Preset, error) {
	preset, err := s.GetPreset(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !partial && (in.Name == nil || in.FormID == nil || len(in.Data) == 0) {
		return nil, invalid("name, form and preset_data are required")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, invalid("name must not be empty")
		}
		preset.Name = *in.Name
	}
	if in.FormID != nil && *in.FormID != preset.FormID {
		if err := s.checkForm(ctx, *in.FormID); err != nil {
			return nil, err
		}
		preset.FormID = *in.FormID
	}
	if len(in.Data) > 0 {
		if err := requireObject("preset_data", in.Data); err != nil {
			return nil, err
		}
		preset.PresetData = compact(in.Data)
	}

	if err := s.store.UpdatePreset(ctx, preset); err != nil {
		return nil, lookupErr("Preset", err)
	}
	return preset, nil
}

// DeletePreset removes a preset.
func (s *PresetService) DeletePreset(ctx context.Context, p auth.Principal, id int64) error {
	if _, err := s.GetPreset(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.DeletePreset(ctx, id); err != nil {
		return lookupErr("Preset", err)
	}
	slog.Info("Preset deleted", "preset_id", id, "user_id", p.UserID)
	return nil
}
