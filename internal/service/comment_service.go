package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// CommentService manages per-field comments. Any authenticated user may read
// and add comments; only the author or an admin may edit or delete one.
type CommentService struct {
	store CommentStore
}

// CommentStore is the storage the comment flows need.
type CommentStore interface {
	storage.FormStore
	storage.CommentStore
}

// CommentInput carries comment values; nil means "not provided".
type CommentInput struct {
	FormID    *int64
	FieldName *string
	Comment   *string
}

// NewCommentService creates a new CommentService.
func NewCommentService(store CommentStore) *CommentService {
	return &CommentService{store: store}
}

// CreateComment adds a comment by the caller to a field of a form.
func (s *CommentService) CreateComment(ctx context.Context, p auth.Principal, in CommentInput) (*models.FieldComment, error) {
	if in.FormID == nil || in.FieldName == nil || *in.FieldName == "" {
		return nil, invalid("form and field_name are required")
	}
	if in.Comment == nil || *in.Comment == "" {
		return nil, invalid("comment is required")
	}
	if _, err := s.store.GetForm(ctx, *in.FormID); err != nil {
		return nil, lookupErr("Form", err)
	}

	c := &models.FieldComment{
		FormID:    *in.FormID,
		FieldName: *in.FieldName,
		UserID:    p.UserID,
		Comment:   *in.Comment,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("Comment added", "comment_id", c.ID, "form_id", c.FormID, "field", c.FieldName)
	return c, nil
}

// GetComment returns one comment.
func (s *CommentService) GetComment(ctx context.Context, _ auth.Principal, id int64) (*models.FieldComment, error) {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, lookupErr("Comment", err)
	}
	return c, nil
}

// ListComments returns comments, optionally of one form and field.
func (s *CommentService) ListComments(ctx context.Context, _ auth.Principal, formID *int64, fieldName *string) ([]*models.FieldComment, error) {
	return s.store.ListComments(ctx, storage.CommentFilter{FormID: formID, FieldName: fieldName})
}

// UpdateComment replaces the comment text.
func (s *CommentService) UpdateComment(ctx context.Context, p auth.Principal, id int64, in CommentInput) (*models.FieldComment, error) {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, lookupErr("Comment", err)
	}
	if !p.Owns(c.UserID) {
		return nil, forbidden("only the author can edit this comment")
	}
	if in.Comment == nil || *in.Comment == "" {
		return nil, invalid("comment is required")
	}
	c.Comment = *in.Comment
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, lookupErr("Comment", err)
	}
	return c, nil
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, p auth.Principal, id int64) error {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return lookupErr("Comment", err)
	}
	if !p.Owns(c.UserID) {
		return forbidden("only the author can delete this comment")
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return lookupErr("Comment", err)
	}
	return nil
}
