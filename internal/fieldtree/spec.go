package fieldtree

import (
	"errors"
	"fmt"
)

// ErrNotDescribable is returned for fields that have no flat description,
// such as arrays of arrays.
var ErrNotDescribable = errors.New("field cannot be described as a single form field")

// Spec is the flat description of one field as stored on a form-field
// record: a type tag, an item type for arrays and nested fields for objects
// and arrays of objects.
type Spec struct {
	Name     string
	Type     string
	ItemType string
	Fields   Structure
}

// Describe flattens a named field into a Spec.
func Describe(name string, f Field) (Spec, error) {
	spec := Spec{Name: name}
	switch v := f.(type) {
	case Leaf:
		spec.Type = v.Type
	case Group:
		spec.Type = TypeObject
		spec.Fields = v.Children
	case Array:
		spec.Type = TypeArray
		switch items := v.Items.(type) {
		case Leaf:
			spec.ItemType = items.Type
		case Group:
			spec.ItemType = TypeObject
			spec.Fields = items.Children
		default:
			return Spec{}, fmt.Errorf("%s: %w", name, ErrNotDescribable)
		}
	default:
		return Spec{}, fmt.Errorf("%s: %w", name, ErrNilField)
	}
	return spec, nil
}

// Field rebuilds the tree node described by s and validates it.
func (s Spec) Field() (Field, error) {
	if s.Name == "" {
		return nil, ErrEmptyName
	}
	if s.ItemType != "" && s.Type != TypeArray {
		return nil, fmt.Errorf("%s: item type is only allowed for type %q", s.Name, TypeArray)
	}
	var f Field
	switch s.Type {
	case "":
		return nil, fmt.Errorf("%s: %w", s.Name, ErrEmptyType)
	case TypeObject:
		f = Group{Children: s.Fields}
	case TypeArray:
		switch s.ItemType {
		case "":
			return nil, fmt.Errorf("%s: %w", s.Name, ErrMissingItems)
		case TypeObject:
			f = Array{Items: Group{Children: s.Fields}}
		default:
			if s.Fields.Len() > 0 {
				return nil, fmt.Errorf("%s: nested fields require item type %q", s.Name, TypeObject)
			}
			f = Array{Items: Leaf{Type: s.ItemType}}
		}
	default:
		if s.Fields.Len() > 0 {
			return nil, fmt.Errorf("%s: nested fields require type %q or %q", s.Name, TypeObject, TypeArray)
		}
		f = Leaf{Type: s.Type}
	}
	if err := validateField(f, s.Name); err != nil {
		return nil, err
	}
	return f, nil
}
