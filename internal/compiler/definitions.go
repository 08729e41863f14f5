package compiler

import (
	"cuelang.org/go/cue"
)

// Definitions is the compiled content of a query definition value.
type Definitions struct {
	Fields  Mapping
	Queries []Query // declaration order
}

// Lookup returns the query named name.
func (d *Definitions) Lookup(name string) (*Query, bool) {
	for i := range d.Queries {
		if d.Queries[i].Name == name {
			return &d.Queries[i], true
		}
	}
	return nil, false
}

// Compile parses a whole definition value: a fields mapping and any
// number of query blocks.
//
//	fields: {...}
//	query: name: {...}
//
// It fails on the first error. Use CompileMapping and CompileQuery to
// collect errors per query.
func Compile(v cue.Value) (*Definitions, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	defs := &Definitions{Fields: Mapping{}}
	if fv := v.LookupPath(cue.ParsePath("fields")); fv.Exists() {
		m, err := CompileMapping(fv)
		if err != nil {
			return nil, err
		}
		defs.Fields = m
	}

	qv := v.LookupPath(cue.ParsePath("query"))
	if !qv.Exists() {
		return defs, nil
	}
	iter, err := qv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		q, err := CompileQuery(iter.Value(), defs.Fields)
		if err != nil {
			return nil, err
		}
		defs.Queries = append(defs.Queries, *q)
	}
	return defs, nil
}
