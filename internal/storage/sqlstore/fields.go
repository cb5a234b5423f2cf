package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
)

const fieldColumns = `id, form_id, name, type, item_type, fields, comment`

func scanFormField(row rowScanner) (*models.FormField, error) {
	field := &models.FormField{}
	var itemType, fields, comment sql.NullString
	if err := row.Scan(&field.ID, &field.FormID, &field.Name, &field.Type, &itemType, &fields, &comment); err != nil {
		return nil, err
	}
	field.ItemType = stringPtr(itemType)
	field.Comment = stringPtr(comment)
	if fields.Valid {
		nested, err := fieldtree.Parse([]byte(fields.String))
		if err != nil {
			return nil, fmt.Errorf("form field %d has corrupt nested fields: %w", field.ID, err)
		}
		field.Fields = &nested
	}
	return field, nil
}

func encodeNested(fields *fieldtree.Structure) (sql.NullString, error) {
	if fields == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode nested fields: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// CreateFormField persists a field record and populates its ID.
func (s *Store) CreateFormField(ctx context.Context, field *models.FormField) error {
	nested, err := encodeNested(field.Fields)
	if err != nil {
		return err
	}
	id, err := s.insert(ctx, s.db, `
		INSERT INTO form_fields (form_id, name, type, item_type, fields, comment)
		VALUES (?, ?, ?, ?, ?, ?)`,
		field.FormID, field.Name, field.Type, nullString(field.ItemType), nested, nullString(field.Comment),
	)
	if err != nil {
		return fmt.Errorf("failed to create form field: %w", mapConstraint(err))
	}
	field.ID = id
	return nil
}

// GetFormField retrieves a field record by ID.
func (s *Store) GetFormField(ctx context.Context, id int64) (*models.FormField, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+fieldColumns+` FROM form_fields WHERE id = ?`), id)
	field, err := scanFormField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("form field", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form field: %w", err)
	}
	return field, nil
}

// ListFormFields returns field records, optionally of a single form.
func (s *Store) ListFormFields(ctx context.Context, formID *int64) ([]*models.FormField, error) {
	var w where
	if formID != nil {
		w.add("form_id = ?", *formID)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+fieldColumns+` FROM form_fields`+w.String()+` ORDER BY id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list form fields: %w", err)
	}
	defer rows.Close()

	var fields []*models.FormField
	for rows.Next() {
		field, err := scanFormField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form field: %w", err)
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating form fields: %w", err)
	}
	return fields, nil
}

// UpdateFormField saves every column of a field record except its form.
func (s *Store) UpdateFormField(ctx context.Context, field *models.FormField) error {
	nested, err := encodeNested(field.Fields)
	if err != nil {
		return err
	}
	return s.execOne(ctx, "form field", field.ID, `
		UPDATE form_fields SET name = ?, type = ?, item_type = ?, fields = ?, comment = ?
		WHERE id = ?`,
		field.Name, field.Type, nullString(field.ItemType), nested, nullString(field.Comment), field.ID,
	)
}

// DeleteFormField removes a field record.
func (s *Store) DeleteFormField(ctx context.Context, id int64) error {
	return s.execOne(ctx, "form field", id, `DELETE FROM form_fields WHERE id = ?`, id)
}
