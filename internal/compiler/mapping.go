package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/searchc/internal/queryir"
)

// Mapping is the set of index fields a query may reference, by name.
type Mapping map[string]*queryir.FieldAttribute

// Names returns the field names in sorted order.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompileMapping parses the fields block of a definition:
//
//	fields: {
//		title:           {type: "text", exact: "title.keyword"}
//		"title.keyword": {type: "keyword", parent: "title"}
//		"authors.name":  {type: "keyword", nested: ["authors"]}
//	}
//
// Cross references (exact, parent) are resolved after every field is
// declared, so declaration order does not matter.
func CompileMapping(v cue.Value) (Mapping, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	type links struct {
		exact, parent string
		pos           token.Pos
	}
	m := Mapping{}
	pending := map[string]links{}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		fv := iter.Value()

		typeName, err := requiredString(fv, "type", "fields."+name+".type")
		if err != nil {
			return nil, err
		}
		dt, err := queryir.ParseDataType(typeName)
		if err != nil {
			return nil, &CompileError{Field: "type", Message: err.Error(), Pos: fv.Pos()}
		}

		attr := &queryir.FieldAttribute{Name: name, Type: dt}
		if attr.NestedPaths, err = optionalStrings(fv, "nested"); err != nil {
			return nil, err
		}
		exact, err := optionalString(fv, "exact")
		if err != nil {
			return nil, err
		}
		parent, err := optionalString(fv, "parent")
		if err != nil {
			return nil, err
		}
		m[name] = attr
		pending[name] = links{exact: exact, parent: parent, pos: fv.Pos()}
	}

	for _, name := range m.Names() {
		l, attr := pending[name], m[name]
		if l.exact != "" {
			target, ok := m[l.exact]
			if !ok {
				return nil, &CompileError{
					Field:   "field",
					Message: fmt.Sprintf("field %q: exact sibling %q is not declared", name, l.exact),
					Pos:     l.pos,
				}
			}
			attr.Exact = target
		}
		if l.parent != "" {
			target, ok := m[l.parent]
			if !ok {
				return nil, &CompileError{
					Field:   "field",
					Message: fmt.Sprintf("field %q: parent %q is not declared", name, l.parent),
					Pos:     l.pos,
				}
			}
			attr.Parent = target
		}
	}
	return m, nil
}

func requiredString(v cue.Value, key, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: key + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, key string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalStrings(v cue.Value, key string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
