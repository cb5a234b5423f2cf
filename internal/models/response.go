package models

import "encoding/json"

// FormResponse is one submission of values against a form.
//
// ResponseData is stored as submitted. It is expected, but not required, to
// follow the form's field tree.
type FormResponse struct {
	ID           int64
	FormID       int64
	UserID       int64
	ResponseData json.RawMessage
	CreatedAt    int64
	UpdatedAt    int64
}
