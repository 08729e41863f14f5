package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/searchc/internal/queryir"
)

var retrievals = map[string]queryir.Retrieval{
	"source":     queryir.FromSource,
	"doc_values": queryir.FromDocValues,
	"stored":     queryir.FromStored,
}

func (p *queryParser) columns(v cue.Value) ([]queryir.Column, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []queryir.Column
	for iter.Next() {
		col, err := p.column(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// column parses a select entry. A bare string selects a field with its
// default retrieval; structs select the other column kinds:
//
//	"title"
//	{field: "title", from: "source"}
//	{script: "double_price", expr: E}
//	{score: true}
//	{agg: "by_tag>avg_price"}
//	{computed: "ratio", inputs: [...]}
func (p *queryParser) column(v cue.Value) (queryir.Column, error) {
	if name, err := v.String(); err == nil {
		attr, ok := p.fields[name]
		if !ok {
			return nil, &CompileError{Field: "field", Message: fmt.Sprintf("select: unknown field %q", name), Pos: v.Pos()}
		}
		return queryir.NewFieldColumn(attr), nil
	}

	has := func(key string) bool { return v.LookupPath(cue.ParsePath(key)).Exists() }
	switch {
	case has("field"):
		attr, err := p.field(v, "field", "select")
		if err != nil {
			return nil, err
		}
		col := queryir.NewFieldColumn(attr)
		from, err := optionalString(v, "from")
		if err != nil {
			return nil, err
		}
		if from != "" {
			r, ok := retrievals[from]
			if !ok {
				return nil, &CompileError{Field: "select", Message: fmt.Sprintf("unknown retrieval %q", from), Pos: v.Pos()}
			}
			col.Retrieval = r
		}
		return col, nil
	case has("script"):
		name, err := requiredString(v, "script", "select.script")
		if err != nil {
			return nil, err
		}
		ev := v.LookupPath(cue.ParsePath("expr"))
		if !ev.Exists() {
			return nil, &CompileError{Field: "select", Message: fmt.Sprintf("script %q: expr is required", name), Pos: v.Pos()}
		}
		expr, err := p.expression(ev)
		if err != nil {
			return nil, err
		}
		return queryir.ScriptColumn{Name: name, Expr: expr}, nil
	case has("score"):
		return queryir.ScoreColumn{}, nil
	case has("agg"):
		path, err := requiredString(v, "agg", "select.agg")
		if err != nil {
			return nil, err
		}
		return queryir.AggColumn{Path: path}, nil
	case has("computed"):
		name, err := requiredString(v, "computed", "select.computed")
		if err != nil {
			return nil, err
		}
		var inputs []queryir.Column
		if iv := v.LookupPath(cue.ParsePath("inputs")); iv.Exists() {
			if inputs, err = p.columns(iv); err != nil {
				return nil, err
			}
		}
		return queryir.ComputedColumn{Name: name, Inputs: inputs}, nil
	default:
		return nil, &CompileError{
			Field:   "select",
			Message: "expected a field name or one of field, script, score, agg, computed",
			Pos:     v.Pos(),
		}
	}
}
