package queryir

import "fmt"

// DataType is the backend field type of an attribute or the declared
// result type of an expression.
type DataType string

const (
	TypeKeyword     DataType = "keyword"
	TypeText        DataType = "text"
	TypeLong        DataType = "long"
	TypeInteger     DataType = "integer"
	TypeShort       DataType = "short"
	TypeByte        DataType = "byte"
	TypeDouble      DataType = "double"
	TypeFloat       DataType = "float"
	TypeHalfFloat   DataType = "half_float"
	TypeScaledFloat DataType = "scaled_float"
	TypeBoolean     DataType = "boolean"
	TypeDate        DataType = "date"
	TypeIP          DataType = "ip"
)

var knownTypes = map[DataType]bool{
	TypeKeyword: true, TypeText: true, TypeLong: true, TypeInteger: true,
	TypeShort: true, TypeByte: true, TypeDouble: true, TypeFloat: true,
	TypeHalfFloat: true, TypeScaledFloat: true, TypeBoolean: true,
	TypeDate: true, TypeIP: true,
}

// ParseDataType returns the DataType named s.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !knownTypes[t] {
		return "", fmt.Errorf("unknown data type %q", s)
	}
	return t, nil
}

// IsNumeric reports whether values of this type sort numerically.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeLong, TypeInteger, TypeShort, TypeByte,
		TypeDouble, TypeFloat, TypeHalfFloat, TypeScaledFloat:
		return true
	}
	return false
}

// IsInexact reports whether the type is analyzed (full-text) and thus not
// usable for sorting, term-level matching or doc values.
func (t DataType) IsInexact() bool {
	return t == TypeText
}

// HasDocValues reports whether the backend keeps columnar values for the type.
func (t DataType) HasDocValues() bool {
	return !t.IsInexact()
}

// Direction is a sort or ordering direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses "asc"/"desc" (empty means asc).
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "asc", "ASC":
		return Asc, nil
	case "desc", "DESC":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("invalid direction %q: must be asc or desc", s)
	}
}

// FieldAttribute describes one document field as resolved against the
// index mapping.
//
// Example (mapping with a keyword sub-field and a nested array):
//
//	title         text     Exact: title.keyword
//	title.keyword keyword  Parent: title
//	authors.name  keyword  NestedPaths: [authors]
type FieldAttribute struct {
	Name string
	Type DataType

	// Exact is the non-analyzed sibling of an inexact field. Nil when the
	// field is exact or when no sibling exists.
	Exact *FieldAttribute

	// Parent is set on multi-field sub-fields (title.keyword → title).
	// Sub-fields do not exist in the document body.
	Parent *FieldAttribute

	// NestedPaths lists nested (array-of-objects) ancestors, outermost first.
	NestedPaths []string
}

// IsInexact reports whether the field is analyzed.
func (f *FieldAttribute) IsInexact() bool {
	return f.Type.IsInexact()
}

// ExactAttribute returns the attribute to use where an exact value is
// required: the field itself when exact, its sibling when inexact, or nil
// when an inexact field has no exact sibling.
func (f *FieldAttribute) ExactAttribute() *FieldAttribute {
	if !f.IsInexact() {
		return f
	}
	return f.Exact
}

// IsNested reports whether the field lives inside a nested structure.
func (f *FieldAttribute) IsNested() bool {
	return len(f.NestedPaths) > 0
}

// NestedParent returns the innermost nested path, or "" when not nested.
func (f *FieldAttribute) NestedParent() string {
	if len(f.NestedPaths) == 0 {
		return ""
	}
	return f.NestedPaths[len(f.NestedPaths)-1]
}

// SourceName returns the path under which the field's value appears in
// the document body. Multi-field sub-fields resolve to their parent.
func (f *FieldAttribute) SourceName() string {
	for cur := f; ; cur = cur.Parent {
		if cur.Parent == nil {
			return cur.Name
		}
	}
}
