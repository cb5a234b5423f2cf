// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/formbuilder/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned (wrapped) when a write violates a uniqueness
	// or reference constraint.
	ErrConflict = errors.New("conflict")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user and populates user.ID.
	// Returns ErrConflict when the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser saves username, email and the admin flag.
	UpdateUser(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the password hash, bumps the token version and
	// returns the new version.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) (int64, error)
}

// TokenStore tracks revoked refresh tokens.
type TokenStore interface {
	// RevokeToken records a token as revoked. Returns ErrConflict when the
	// token was already revoked.
	RevokeToken(ctx context.Context, token *models.RevokedToken) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// PruneRevokedTokens deletes rows whose token expired before the given
	// Unix time and returns how many were removed.
	PruneRevokedTokens(ctx context.Context, before int64) (int64, error)
}

// FormFilter narrows ListForms. Nil fields are ignored.
type FormFilter struct {
	CreatedBy *int64
}

// FormStore persists forms.
type FormStore interface {
	CreateForm(ctx context.Context, form *models.Form) error
	GetForm(ctx context.Context, id int64) (*models.Form, error)
	ListForms(ctx context.Context, filter FormFilter) ([]*models.Form, error)
	UpdateForm(ctx context.Context, form *models.Form) error

	// DeleteForm removes the form together with its fields, presets,
	// responses and comments.
	DeleteForm(ctx context.Context, id int64) error
}

// FieldStore persists form field records.
type FieldStore interface {
	CreateFormField(ctx context.Context, field *models.FormField) error
	GetFormField(ctx context.Context, id int64) (*models.FormField, error)
	ListFormFields(ctx context.Context, formID *int64) ([]*models.FormField, error)
	UpdateFormField(ctx context.Context, field *models.FormField) error
	DeleteFormField(ctx context.Context, id int64) error
}

// PresetFilter narrows ListPresets. Nil fields are ignored.
type PresetFilter struct {
	FormID    *int64
	CreatedBy *int64
}

// PresetStore persists presets.
type PresetStore interface {
	CreatePreset(ctx context.Context, preset *models.Preset) error
	GetPreset(ctx context.Context, id int64) (*models.Preset, error)
	ListPresets(ctx context.Context, filter PresetFilter) ([]*models.Preset, error)
	UpdatePreset(ctx context.Context, preset *models.Preset) error
	DeletePreset(ctx context.Context, id int64) error
}

// ResponseFilter narrows ListResponses. Nil fields are ignored.
type ResponseFilter struct {
	FormID *int64

	// VisibleTo keeps responses submitted by this user or submitted to a
	// form this user owns.
	VisibleTo *int64
}

// ResponseStore persists form responses.
type ResponseStore interface {
	CreateResponse(ctx context.Context, resp *models.FormResponse) error
	GetResponse(ctx context.Context, id int64) (*models.FormResponse, error)
	ListResponses(ctx context.Context, filter ResponseFilter) ([]*models.FormResponse, error)
	UpdateResponse(ctx context.Context, resp *models.FormResponse) error
	DeleteResponse(ctx context.Context, id int64) error
}

// CommentFilter narrows ListComments. Nil fields are ignored.
type CommentFilter struct {
	FormID    *int64
	FieldName *string
}

// CommentStore persists field comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.FieldComment) error
	GetComment(ctx context.Context, id int64) (*models.FieldComment, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]*models.FieldComment, error)
	UpdateComment(ctx context.Context, comment *models.FieldComment) error
	DeleteComment(ctx context.Context, id int64) error
}

// Store defines every storage operation of the form builder.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	TokenStore
	FormStore
	FieldStore
	PresetStore
	ResponseStore
	CommentStore

	// Close releases any resources held by the store.
	Close() error
}
