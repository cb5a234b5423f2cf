package models

import "github.com/mmynk/formbuilder/internal/fieldtree"

// Form is a form definition. Its field tree is ordered: the order of
// Structure is the order in which fields are displayed.
type Form struct {
	ID int64

	Title string

	// CreatedBy is the owning user's ID. It is always taken from the
	// authenticated caller, never from client input.
	CreatedBy int64

	Structure fieldtree.Structure

	// Identifier is an optional external reference for the form.
	Identifier *string

	CreatedAt int64
	UpdatedAt int64
}

// FormField describes one field of a form as a standalone record.
type FormField struct {
	ID     int64
	FormID int64

	Name string
	Type string

	// ItemType is set for array fields ("string", "object", ...).
	ItemType *string

	// Fields holds nested field definitions for object fields and arrays
	// of objects.
	Fields *fieldtree.Structure

	Comment *string
}

// Spec returns the flat fieldtree description of the record.
func (f *FormField) Spec() fieldtree.Spec {
	spec := fieldtree.Spec{Name: f.Name, Type: f.Type}
	if f.ItemType != nil {
		spec.ItemType = *f.ItemType
	}
	if f.Fields != nil {
		spec.Fields = *f.Fields
	}
	return spec
}
