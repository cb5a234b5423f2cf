package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

const commentColumns = `id, form_id, field_name, user_id, comment, created_at`

func scanComment(row rowScanner) (*models.FieldComment, error) {
	c := &models.FieldComment{}
	if err := row.Scan(&c.ID, &c.FormID, &c.FieldName, &c.UserID, &c.Comment, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment persists a field comment and populates its ID.
func (s *Store) CreateComment(ctx context.Context, comment *models.FieldComment) error {
	if comment.CreatedAt == 0 {
		comment.CreatedAt = time.Now().Unix()
	}
	id, err := s.insert(ctx, s.db, `
		INSERT INTO field_comments (form_id, field_name, user_id, comment, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.FormID, comment.FieldName, comment.UserID, comment.Comment, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", mapConstraint(err))
	}
	comment.ID = id
	return nil
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (*models.FieldComment, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+commentColumns+` FROM field_comments WHERE id = ?`), id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("comment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// ListComments returns comments oldest first.
func (s *Store) ListComments(ctx context.Context, filter storage.CommentFilter) ([]*models.FieldComment, error) {
	var w where
	if filter.FormID != nil {
		w.add("form_id = ?", *filter.FormID)
	}
	if filter.FieldName != nil {
		w.add("field_name = ?", *filter.FieldName)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+commentColumns+` FROM field_comments`+w.String()+` ORDER BY created_at, id`), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.FieldComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return out, nil
}

// UpdateComment replaces the comment text.
func (s *Store) UpdateComment(ctx context.Context, comment *models.FieldComment) error {
	return s.execOne(ctx, "comment", comment.ID, `UPDATE field_comments SET comment = ? WHERE id = ?`, comment.Comment, comment.ID)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	return s.execOne(ctx, "comment", id, `DELETE FROM field_comments WHERE id = ?`, id)
}
