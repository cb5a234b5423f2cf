package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

const formColumns = `id, title, created_by, form_structure, identifier, created_at, updated_at`

func scanForm(row rowScanner) (*models.Form, error) {
	form := &models.Form{}
	var (
		structure  string
		identifier sql.NullString
	)
	if err := row.Scan(
		&form.ID,
		&form.Title,
		&form.CreatedBy,
		&structure,
		&identifier,
		&form.CreatedAt,
		&form.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := fieldtree.Parse([]byte(structure))
	if err != nil {
		return nil, fmt.Errorf("form %d has a corrupt structure: %w", form.ID, err)
	}
	form.Structure = parsed
	form.Identifier = stringPtr(identifier)
	return form, nil
}

// CreateForm persists a new form and populates its ID and timestamps.
func (s *Store) CreateForm(ctx context.Context, form *models.Form) error {
	structure, err := json.Marshal(form.Structure)
	if err != nil {
		return fmt.Errorf("failed to encode form structure: %w", err)
	}
	now := time.Now().Unix()
	if form.CreatedAt == 0 {
		form.CreatedAt = now
	}
	form.UpdatedAt = form.CreatedAt

	id, err := s.insert(ctx, s.db, `
		INSERT INTO forms (title, created_by, form_structure, identifier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		form.Title,
		form.CreatedBy,
		string(structure),
		nullString(form.Identifier),
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", mapConstraint(err))
	}
	form.ID = id
	return nil
}

// GetForm retrieves a form by ID.
func (s *Store) GetForm(ctx context.Context, id int64) (*models.Form, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+formColumns+` FROM forms WHERE id = ?`), id)
	form, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("form", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

// ListForms returns forms ordered by ID.
func (s *Store) ListForms(ctx context.Context, filter storage.FormFilter) ([]*models.Form, error) {
	var w where
	if filter.CreatedBy != nil {
		w.add("created_by = ?", *filter.CreatedBy)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+formColumns+` FROM forms`+w.String()+` ORDER BY id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var forms []*models.Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forms: %w", err)
	}
	return forms, nil
}

// UpdateForm saves title, structure and identifier. Ownership never changes.
func (s *Store) UpdateForm(ctx context.Context, form *models.Form) error {
	structure, err := json.Marshal(form.Structure)
	if err != nil {
		return fmt.Errorf("failed to encode form structure: %w", err)
	}
	form.UpdatedAt = time.Now().Unix()
	return s.execOne(ctx, "form", form.ID, `
		UPDATE forms SET title = ?, form_structure = ?, identifier = ?, updated_at = ?
		WHERE id = ?`,
		form.Title, string(structure), nullString(form.Identifier), form.UpdatedAt, form.ID,
	)
}

// DeleteForm removes a form and every dependent row in one transaction.
func (s *Store) DeleteForm(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(ctx context.Context, tx DBTX) error {
		for _, table := range []string{"field_comments", "form_responses", "presets", "form_fields"} {
			if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE form_id = ?`), id); err != nil {
				return fmt.Errorf("failed to delete %s of form %d: %w", table, id, err)
			}
		}

		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM forms WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete form: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete form: %w", err)
		}
		if n == 0 {
			return notFound("form", id)
		}
		return nil
	})
}
