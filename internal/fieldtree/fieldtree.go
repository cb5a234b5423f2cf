// Package fieldtree models a form's field structure as an ordered tree.
//
// A Structure is an ordered sequence of named fields. Each Field is one of
// three variants:
//
//   - Leaf: a scalar input with a type tag ("string", "number", ...)
//   - Group: a nested Structure (an "object" field)
//   - Array: a repeated field whose Items is itself a Field
//
// Field order is significant (it is the display order of the form builder)
// and is preserved by the JSON codec in json.go.
package fieldtree

import (
	"errors"
	"fmt"
)

// Type tags with structural meaning.
const (
	TypeObject = "object"
	TypeArray  = "array"
)

var (
	ErrNotObject        = errors.New("form structure must be a JSON object")
	ErrDuplicateName    = errors.New("duplicate field name")
	ErrEmptyName        = errors.New("field name must not be empty")
	ErrEmptyType        = errors.New("field type must not be empty")
	ErrUnsupportedValue = errors.New("field definition must be a type name or an object")
	ErrMissingItems     = errors.New("array field requires items")
	ErrNilField         = errors.New("field definition is missing")
	ErrAmbiguousGroup   = errors.New("an object whose only members are type/items with a scalar type is read as a typed field")
)

// Kind identifies the variant of a Field.
type Kind int

const (
	KindLeaf Kind = iota + 1
	KindGroup
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is one node of a field tree. The set of implementations is closed:
// Leaf, Group and Array.
type Field interface {
	Kind() Kind
	isField()
}

// Leaf is a scalar field identified by its type tag.
type Leaf struct {
	Type string
}

// Group is an object field holding nested fields.
type Group struct {
	Children Structure
}

// Array is a repeated field. Items describes a single element.
type Array struct {
	Items Field
}

func (Leaf) Kind() Kind  { return KindLeaf }
func (Group) Kind() Kind { return KindGroup }
func (Array) Kind() Kind { return KindArray }

func (Leaf) isField()  {}
func (Group) isField() {}
func (Array) isField() {}

// Entry is a named field inside a Structure.
type Entry struct {
	Name  string
	Field Field
}

// Structure is an ordered collection of uniquely named fields.
// The zero value is an empty structure ready to use.
type Structure struct {
	entries []Entry
}

// From builds a Structure from entries, keeping their order.
func From(entries ...Entry) (Structure, error) {
	var s Structure
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			return Structure{}, fmt.Errorf("%s: %w", e.Name, ErrDuplicateName)
		}
		seen[e.Name] = struct{}{}
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// Len returns the number of top-level fields.
func (s Structure) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the top-level entries in order.
func (s Structure) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Names returns the top-level field names in order.
func (s Structure) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Get looks up a top-level field by name.
func (s Structure) Get(name string) (Field, bool) {
	if i := s.indexOf(name); i >= 0 {
		return s.entries[i].Field, true
	}
	return nil, false
}

// Set replaces the field called name at its current position, or appends it
// when absent. Copies of s taken before the call are not affected.
func (s *Structure) Set(name string, f Field) {
	entries := s.Entries()
	if i := s.indexOf(name); i >= 0 {
		entries[i].Field = f
	} else {
		entries = append(entries, Entry{Name: name, Field: f})
	}
	s.entries = entries
}

// Delete removes the field called name and reports whether it existed.
func (s *Structure) Delete(name string) bool {
	i := s.indexOf(name)
	if i < 0 {
		return false
	}
	entries := make([]Entry, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:i]...)
	s.entries = append(entries, s.entries[i+1:]...)
	return true
}

func (s Structure) indexOf(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks the whole tree. Errors are prefixed with the dotted path
// of the offending field.
func (s Structure) Validate() error {
	return s.validate("")
}

func (s Structure) validate(prefix string) error {
	seen := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		path := joinPath(prefix, e.Name)
		if e.Name == "" {
			return fmt.Errorf("%s: %w", pathOrRoot(prefix), ErrEmptyName)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%s: %w", path, ErrDuplicateName)
		}
		seen[e.Name] = struct{}{}
		if err := validateField(e.Field, path); err != nil {
			return err
		}
	}
	return nil
}

func validateField(f Field, path string) error {
	switch v := f.(type) {
	case nil:
		return fmt.Errorf("%s: %w", path, ErrNilField)
	case Leaf:
		if v.Type == "" {
			return fmt.Errorf("%s: %w", path, ErrEmptyType)
		}
	case Group:
		if v.Children.readsAsTyped() {
			return fmt.Errorf("%s: %w", path, ErrAmbiguousGroup)
		}
		return v.Children.validate(path)
	case Array:
		if v.Items == nil {
			return fmt.Errorf("%s: %w", path, ErrMissingItems)
		}
		return validateField(v.Items, path+"[]")
	}
	return nil
}

// readsAsTyped reports whether the encoded form of s would be decoded as a
// typed field ({"type": "...", "items": ...}) instead of a group.
func (s Structure) readsAsTyped() bool {
	t, ok := s.Get("type")
	if !ok {
		return false
	}
	if _, isLeaf := t.(Leaf); !isLeaf {
		return false
	}
	for _, e := range s.entries {
		if e.Name != "type" && e.Name != "items" {
			return false
		}
	}
	return true
}

// Equal reports whether two structures have the same fields in the same order.
func (s Structure) Equal(other Structure) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if s.entries[i].Name != other.entries[i].Name {
			return false
		}
		if !FieldEqual(s.entries[i].Field, other.entries[i].Field) {
			return false
		}
	}
	return true
}

// FieldEqual compares two fields structurally.
func FieldEqual(a, b Field) bool {
	switch av := a.(type) {
	case Leaf:
		bv, ok := b.(Leaf)
		return ok && av.Type == bv.Type
	case Group:
		bv, ok := b.(Group)
		return ok && av.Children.Equal(bv.Children)
	case Array:
		bv, ok := b.(Array)
		return ok && FieldEqual(av.Items, bv.Items)
	case nil:
		return b == nil
	}
	return false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
