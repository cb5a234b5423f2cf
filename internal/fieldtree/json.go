package fieldtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MarshalJSON encodes the structure as a JSON object whose members appear in
// field order. Leaves encode as their type string, groups as nested objects
// and arrays as {"type":"array","items":...}.
func (s Structure) MarshalJSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeStructure(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the structure, keeping member
// order. Objects of the form {"type": "<name>"} are read as leaves and
// {"type": "array", "items": ...} as arrays; every other object is a group.
func (s *Structure) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse decodes and validates a structure document.
func Parse(data []byte) (Structure, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Structure{}, fmt.Errorf("decode form structure: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Structure{}, ErrNotObject
	}
	entries, err := decodeMembers(dec, "")
	if err != nil {
		return Structure{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Structure{}, fmt.Errorf("decode form structure: unexpected data after top-level object")
	}
	s := Structure{entries: entries}
	if err := s.Validate(); err != nil {
		return Structure{}, err
	}
	return s, nil
}

// decodeMembers reads object members up to and including the closing brace.
func decodeMembers(dec *json.Decoder, prefix string) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode form structure: %w", err)
		}
		name, _ := tok.(string)
		path := joinPath(prefix, name)
		if name == "" {
			return nil, fmt.Errorf("%s: %w", pathOrRoot(prefix), ErrEmptyName)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s: %w", path, ErrDuplicateName)
		}
		seen[name] = struct{}{}

		f, err := decodeField(dec, path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Field: f})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode form structure: %w", err)
	}
	return entries, nil
}

func decodeField(dec *json.Decoder, path string) (Field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode form structure: %w", err)
	}
	switch v := tok.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyType)
		}
		return Leaf{Type: v}, nil
	case json.Delim:
		if v == '{' {
			entries, err := decodeMembers(dec, path)
			if err != nil {
				return nil, err
			}
			return classify(Structure{entries: entries}, path)
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedValue)
}

// classify decides whether a decoded object is a typed field or a group.
func classify(obj Structure, path string) (Field, error) {
	if !obj.readsAsTyped() {
		return Group{Children: obj}, nil
	}
	t, _ := obj.Get("type")
	leaf := t.(Leaf)
	items, hasItems := obj.Get("items")
	if leaf.Type == TypeArray {
		if !hasItems {
			return nil, fmt.Errorf("%s: %w", path, ErrMissingItems)
		}
		return Array{Items: items}, nil
	}
	if hasItems {
		return nil, fmt.Errorf("%s: %w", path, ErrAmbiguousGroup)
	}
	return leaf, nil
}

func writeStructure(buf *bytes.Buffer, s Structure) error {
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, e.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeField(buf, e.Field); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeField(buf *bytes.Buffer, f Field) error {
	switch v := f.(type) {
	case Leaf:
		return writeString(buf, v.Type)
	case Group:
		return writeStructure(buf, v.Children)
	case Array:
		buf.WriteString(`{"type":"array","items":`)
		if err := writeField(buf, v.Items); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	}
	return ErrNilField
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Skeleton returns an empty response document shaped like s: leaves become
// "", groups nested objects and arrays a list holding one blank element.
// Member order follows the structure.
func Skeleton(s Structure) json.RawMessage {
	var buf bytes.Buffer
	writeSkeleton(&buf, s)
	return buf.Bytes()
}

func writeSkeleton(buf *bytes.Buffer, s Structure) {
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		_ = writeString(buf, e.Name)
		buf.WriteByte(':')
		writeBlank(buf, e.Field)
	}
	buf.WriteByte('}')
}

func writeBlank(buf *bytes.Buffer, f Field) {
	switch v := f.(type) {
	case Group:
		writeSkeleton(buf, v.Children)
	case Array:
		buf.WriteByte('[')
		writeBlank(buf, v.Items)
		buf.WriteByte(']')
	default:
		buf.WriteString(`""`)
	}
}
