package fieldtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const builderDoc = `{
	"reference": "string",
	"customer": {"name": "string", "age": "number"},
	"tags": {"type": "array", "items": "string"},
	"lines": {"type": "array", "items": {"sku": "string", "qty": "number"}},
	"notes": {"type": "text"}
}`

func TestParse_PreservesOrder(t *testing.T) {
	s, err := Parse([]byte(builderDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"reference", "customer", "tags", "lines", "notes"}, s.Names())

	customer, ok := s.Get("customer")
	require.True(t, ok)
	group, ok := customer.(Group)
	require.True(t, ok, "customer should be a group, got %T", customer)
	assert.Equal(t, []string{"name", "age"}, group.Children.Names())

	tags, _ := s.Get("tags")
	assert.Equal(t, Array{Items: Leaf{Type: "string"}}, tags)

	lines, _ := s.Get("lines")
	arr, ok := lines.(Array)
	require.True(t, ok)
	items, ok := arr.Items.(Group)
	require.True(t, ok)
	assert.Equal(t, []string{"sku", "qty"}, items.Children.Names())

	notes, _ := s.Get("notes")
	assert.Equal(t, Leaf{Type: "text"}, notes)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"flat", `{"b":"string","a":"number"}`},
		{"nested", `{"z":{"y":{"x":"string","w":"number"}},"a":"string"}`},
		{"array of leaves", `{"tags":{"type":"array","items":"string"}}`},
		{"array of groups", `{"rows":{"type":"array","items":{"k":"string","j":"number"}}}`},
		{"nested arrays", `{"m":{"type":"array","items":{"type":"array","items":"number"}}}`},
		{"empty group", `{"meta":{}}`},
		{"empty", `{}`},
		{"group with type member", `{"o":{"type":{"inner":"string"}}}`},
		{"group with type leaf and other member", `{"o":{"type":"string","label":"string"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			encoded, err := json.Marshal(first)
			require.NoError(t, err)
			assert.JSONEq(t, tt.doc, string(encoded))
			assert.Equal(t, tt.doc, string(encoded), "member order must survive encoding")

			var second Structure
			require.NoError(t, json.Unmarshal(encoded, &second))
			assert.True(t, first.Equal(second), "decode(encode(x)) != x")
		})
	}
}

func TestRoundTrip_NormalizesLeafObjects(t *testing.T) {
	s, err := Parse([]byte(`{"a":{"type":"text"},"b":"string"}`))
	require.NoError(t, err)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"text","b":"string"}`, string(out))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"array root", `["a"]`, ErrNotObject},
		{"string root", `"x"`, ErrNotObject},
		{"number field", `{"a":1}`, ErrUnsupportedValue},
		{"list field", `{"a":["string"]}`, ErrUnsupportedValue},
		{"null field", `{"a":null}`, ErrUnsupportedValue},
		{"empty type", `{"a":""}`, ErrEmptyType},
		{"empty name", `{"":"string"}`, ErrEmptyName},
		{"duplicate", `{"a":"string","a":"number"}`, ErrDuplicateName},
		{"nested duplicate", `{"g":{"x":"string","x":"string"}}`, ErrDuplicateName},
		{"array without items", `{"a":{"type":"array"}}`, ErrMissingItems},
		{"items on scalar", `{"a":{"type":"string","items":"number"}}`, ErrAmbiguousGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_RejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a":"string"} {"b":"string"}`))
	assert.Error(t, err)
}

func TestParse_ErrorIncludesPath(t *testing.T) {
	_, err := Parse([]byte(`{"outer":{"inner":5}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outer.inner")
}

func TestUnmarshal_NullIsNoop(t *testing.T) {
	var s Structure
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, 0, s.Len())
}

func TestMarshal_RejectsAmbiguousGroup(t *testing.T) {
	var inner Structure
	inner.Set("type", Leaf{Type: "string"})

	var s Structure
	s.Set("weird", Group{Children: inner})

	_, err := json.Marshal(s)
	assert.ErrorIs(t, err, ErrAmbiguousGroup)
}

func TestStructure_SetAndDelete(t *testing.T) {
	var s Structure
	s.Set("a", Leaf{Type: "string"})
	s.Set("b", Leaf{Type: "number"})
	s.Set("c", Leaf{Type: "string"})

	snapshot := s
	s.Set("a", Leaf{Type: "number"})
	assert.Equal(t, []string{"a", "b", "c"}, s.Names(), "replacing keeps position")

	got, _ := snapshot.Get("a")
	assert.Equal(t, Leaf{Type: "string"}, got, "earlier copies are unaffected")

	assert.True(t, s.Delete("b"))
	assert.False(t, s.Delete("missing"))
	assert.Equal(t, []string{"a", "c"}, s.Names())
	assert.Equal(t, []string{"a", "b", "c"}, snapshot.Names())
}

func TestFrom_RejectsDuplicates(t *testing.T) {
	_, err := From(Entry{Name: "a", Field: Leaf{Type: "string"}}, Entry{Name: "a", Field: Leaf{Type: "string"}})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestEqual(t *testing.T) {
	a, err := Parse([]byte(`{"a":"string","b":{"c":"number"}}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"b":{"c":"number"},"a":"string"}`))
	require.NoError(t, err)
	c, err := Parse([]byte(`{"a":"string","b":{"c":"number"}}`))
	require.NoError(t, err)

	assert.False(t, a.Equal(b), "order matters")
	assert.True(t, a.Equal(c))
}

func TestSkeleton(t *testing.T) {
	s, err := Parse([]byte(builderDoc))
	require.NoError(t, err)

	got := Skeleton(s)
	want := `{"reference":"","customer":{"name":"","age":""},"tags":[""],"lines":[{"sku":"","qty":""}],"notes":""}`
	assert.Equal(t, want, string(got))
	assert.True(t, json.Valid(got))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "leaf", Leaf{}.Kind().String())
	assert.Equal(t, "group", Group{}.Kind().String())
	assert.Equal(t, "array", Array{}.Kind().String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
