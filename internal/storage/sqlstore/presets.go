package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

const presetColumns = `id, name, created_by, form_id, preset_data, created_at`

func scanPreset(row rowScanner) (*models.Preset, error) {
	p := &models.Preset{}
	var data string
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedBy, &p.FormID, &data, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.PresetData = json.RawMessage(data)
	return p, nil
}

// CreatePreset persists a preset and populates its ID.
func (s *Store) CreatePreset(ctx context.Context, preset *models.Preset) error {
	if preset.CreatedAt == 0 {
		preset.CreatedAt = time.Now().Unix()
	}
	id, err := s.insert(ctx, s.db, `
		INSERT INTO presets (name, created_by, form_id, preset_data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		preset.Name, preset.CreatedBy, preset.FormID, string(preset.PresetData), preset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create preset: %w", mapConstraint(err))
	}
	preset.ID = id
	return nil
}

// GetPreset retrieves a preset by ID.
func (s *Store) GetPreset(ctx context.Context, id int64) (*models.Preset, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+presetColumns+` FROM presets WHERE id = ?`), id)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("preset", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}
	return p, nil
}

// ListPresets returns presets ordered by ID.
func (s *Store) ListPresets(ctx context.Context, filter storage.PresetFilter) ([]*models.Preset, error) {
	var w where
	if filter.FormID != nil {
		w.add("form_id = ?", *filter.FormID)
	}
	if filter.CreatedBy != nil {
		w.add("created_by = ?", *filter.CreatedBy)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+presetColumns+` FROM presets`+w.String()+` ORDER BY id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var presets []*models.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presets: %w", err)
	}
	return presets, nil
}

// UpdatePreset saves name, form and data of a preset.
func (s *Store) UpdatePreset(ctx context.Context, preset *models.Preset) error {
	return s.execOne(ctx, "preset", preset.ID, `
		UPDATE presets SET name = ?, form_id = ?, preset_data = ?
		WHERE id = ?`,
		preset.Name, preset.FormID, string(preset.PresetData), preset.ID,
	)
}

// DeletePreset removes a preset.
func (s *Store) DeletePreset(ctx context.Context, id int64) error {
	return s.execOne(ctx, "preset", id, `DELETE FROM presets WHERE id = ?`, id)
}
