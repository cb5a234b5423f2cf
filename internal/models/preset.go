package models

import "encoding/json"

// Preset is a named snapshot of values for a form's fields, reused to
// pre-fill new responses. PresetData has the same shape as a response.
type Preset struct {
	ID         int64
	Name       string
	CreatedBy  int64
	FormID     int64
	PresetData json.RawMessage
	CreatedAt  int64
}
