package api

import (
	"encoding/json"
	"time"

	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
)

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func toUser(u *models.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

type formJSON struct {
	ID         int64               `json:"id"`
	Title      string              `json:"title"`
	CreatedBy  int64               `json:"created_by"`
	Structure  fieldtree.Structure `json:"form_structure"`
	Identifier *string             `json:"identifier"`
}

func toForm(f *models.Form) formJSON {
	return formJSON{
		ID:         f.ID,
		Title:      f.Title,
		CreatedBy:  f.CreatedBy,
		Structure:  f.Structure,
		Identifier: f.Identifier,
	}
}

type presetJSON struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	CreatedBy int64           `json:"created_by"`
	Form      int64           `json:"form"`
	Data      json.RawMessage `json:"preset_data"`
}

func toPreset(p *models.Preset) presetJSON {
	return presetJSON{ID: p.ID, Name: p.Name, CreatedBy: p.CreatedBy, Form: p.FormID, Data: p.PresetData}
}

type responseJSON struct {
	ID   int64           `json:"id"`
	Form int64           `json:"form"`
	User int64           `json:"user"`
	Data json.RawMessage `json:"response_data"`
}

func toResponse(r *models.FormResponse) responseJSON {
	return responseJSON{ID: r.ID, Form: r.FormID, User: r.UserID, Data: r.ResponseData}
}

type fieldJSON struct {
	ID       int64                `json:"id"`
	Form     int64                `json:"form"`
	Name     string               `json:"name"`
	Type     string               `json:"type"`
	ItemType *string              `json:"item_type"`
	Fields   *fieldtree.Structure `json:"fields"`
	Comment  *string              `json:"comment"`
}

func toField(f *models.FormField) fieldJSON {
	return fieldJSON{
		ID:       f.ID,
		Form:     f.FormID,
		Name:     f.Name,
		Type:     f.Type,
		ItemType: f.ItemType,
		Fields:   f.Fields,
		Comment:  f.Comment,
	}
}

type commentJSON struct {
	ID        int64  `json:"id"`
	Form      int64  `json:"form"`
	FieldName string `json:"field_name"`
	User      int64  `json:"user"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func toComment(c *models.FieldComment) commentJSON {
	return commentJSON{
		ID:        c.ID,
		Form:      c.FormID,
		FieldName: c.FieldName,
		User:      c.UserID,
		Comment:   c.Comment,
		CreatedAt: time.Unix(c.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

func mapAll[T, J any](items []T, conv func(T) J) []J {
	out := make([]J, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	return out
}

// Request bodies. Pointer fields distinguish "absent" from zero values so
// PATCH can update only what was sent.

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type userRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

type formRequest struct {
	Title      *string         `json:"title"`
	Structure  json.RawMessage `json:"form_structure"`
	Identifier json.RawMessage `json:"identifier"`
}

type submitRequest struct {
	Form *int64          `json:"form"`
	Data json.RawMessage `json:"response_data"`
}

type presetRequest struct {
	Name *string         `json:"name"`
	Form *int64          `json:"form"`
	Data json.RawMessage `json:"preset_data"`
}

type fieldRequest struct {
	Form     *int64          `json:"form"`
	Name     *string         `json:"name"`
	Type     *string         `json:"type"`
	ItemType *string         `json:"item_type"`
	Fields   json.RawMessage `json:"fields"`
	Comment  *string         `json:"comment"`
}

type commentRequest struct {
	FormID    *int64  `json:"form"`
	FieldName *string `json:"field_name"`
	Comment   *string `json:"comment"`
}
