package models

// FieldComment is a user's annotation on a named field of a form.
type FieldComment struct {
	ID        int64
	FormID    int64
	FieldName string
	UserID    int64
	Comment   string
	CreatedAt int64
}
