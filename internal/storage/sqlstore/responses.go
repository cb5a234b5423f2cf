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

const responseColumns = `r.id, r.form_id, r.user_id, r.response_data, r.created_at, r.updated_at`

func scanResponse(row rowScanner) (*models.FormResponse, error) {
	r := &models.FormResponse{}
	var data string
	if err := row.Scan(&r.ID, &r.FormID, &r.UserID, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ResponseData = json.RawMessage(data)
	return r, nil
}

// CreateResponse stores a submitted response document as-is.
func (s *Store) CreateResponse(ctx context.Context, resp *models.FormResponse) error {
	if resp.CreatedAt == 0 {
		resp.CreatedAt = time.Now().Unix()
	}
	resp.UpdatedAt = resp.CreatedAt
	id, err := s.insert(ctx, s.db, `
		INSERT INTO form_responses (form_id, user_id, response_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		resp.FormID, resp.UserID, string(resp.ResponseData), resp.CreatedAt, resp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create response: %w", mapConstraint(err))
	}
	resp.ID = id
	return nil
}

// GetResponse retrieves a response by ID.
func (s *Store) GetResponse(ctx context.Context, id int64) (*models.FormResponse, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+responseColumns+` FROM form_responses r WHERE r.id = ?`), id)
	r, err := scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("response", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return r, nil
}

// ListResponses returns responses ordered by ID.
func (s *Store) ListResponses(ctx context.Context, filter storage.ResponseFilter) ([]*models.FormResponse, error) {
	var w where
	if filter.FormID != nil {
		w.add("r.form_id = ?", *filter.FormID)
	}
	if filter.VisibleTo != nil {
		w.add("(r.user_id = ? OR f.created_by = ?)", *filter.VisibleTo, *filter.VisibleTo)
	}
	query := `SELECT ` + responseColumns + ` FROM form_responses r JOIN forms f ON f.id = r.form_id` + w.String() + ` ORDER BY r.id`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var out []*models.FormResponse
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}
	return out, nil
}

// UpdateResponse replaces the response document.
func (s *Store) UpdateResponse(ctx context.Context, resp *models.FormResponse) error {
	resp.UpdatedAt = time.Now().Unix()
	return s.execOne(ctx, "response", resp.ID, `
		UPDATE form_responses SET response_data = ?, updated_at = ?
		WHERE id = ?`,
		string(resp.ResponseData), resp.UpdatedAt, resp.ID,
	)
}

// DeleteResponse removes a response.
func (s *Store) DeleteResponse(ctx context.Context, id int64) error {
	return s.execOne(ctx, "response", id, `DELETE FROM form_responses WHERE id = ?`, id)
}
