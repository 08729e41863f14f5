package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/queryir"
)

// Query is one named query definition compiled to a logical container.
type Query struct {
	Name      string
	Container *queryir.Container
	Pos       token.Pos
}

// CompileQuery parses a query block into a container. Field names are
// resolved against fields.
//
//	query: recent_books: {
//		select:   ["title", {score: true}]
//		where:    {match: {field: "title", query: "go"}}
//		order_by: [{field: "published", dir: "desc"}]
//		limit:    20
//	}
//
// Sort keys naming an undeclared field compile to an unresolved sort, which
// the request compiler drops. Every other undeclared field is an error.
func CompileQuery(v cue.Value, fields Mapping) (*Query, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	q := &Query{Pos: v.Pos(), Container: &queryir.Container{}}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		q.Name = labels[len(labels)-1].Unquoted()
	}

	p := &queryParser{fields: fields}
	c := q.Container
	var err error

	if wv := v.LookupPath(cue.ParsePath("where")); wv.Exists() {
		if c.Query, err = p.predicate(wv); err != nil {
			return nil, err
		}
	}
	if sv := v.LookupPath(cue.ParsePath("select")); sv.Exists() {
		if c.Columns, err = p.columns(sv); err != nil {
			return nil, err
		}
	}
	if c.Aggs, err = p.aggs(v); err != nil {
		return nil, err
	}
	if ov := v.LookupPath(cue.ParsePath("order_by")); ov.Exists() {
		if c.Sort, err = p.sorts(ov); err != nil {
			return nil, err
		}
	}
	if lv := v.LookupPath(cue.ParsePath("limit")); lv.Exists() {
		n, err := lv.Int64()
		if err != nil {
			return nil, &CompileError{Field: "limit", Message: "limit must be an int", Pos: lv.Pos()}
		}
		c.Limit = int(n)
	}
	if av := v.LookupPath(cue.ParsePath("aggs_only")); av.Exists() {
		if c.AggsOnly, err = av.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	return q, nil
}

// queryParser resolves field names while walking a query block.
type queryParser struct {
	fields Mapping
}

func (p *queryParser) field(v cue.Value, key, where string) (*queryir.FieldAttribute, error) {
	name, err := requiredString(v, key, where)
	if err != nil {
		return nil, err
	}
	attr, ok := p.fields[name]
	if !ok {
		return nil, &CompileError{
			Field:   "field",
			Message: fmt.Sprintf("%s: unknown field %q", where, name),
			Pos:     v.Pos(),
		}
	}
	return attr, nil
}

// singleKey returns the only field of a one-key struct such as {term: {...}}.
func singleKey(v cue.Value, where string) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err)
	}
	var label string
	var body cue.Value
	n := 0
	for iter.Next() {
		label, body = iter.Selector().Unquoted(), iter.Value()
		n++
	}
	if n != 1 {
		return "", cue.Value{}, &CompileError{
			Field:   where,
			Message: fmt.Sprintf("expected exactly one key, found %d", n),
			Pos:     v.Pos(),
		}
	}
	return label, body, nil
}

func (p *queryParser) predicate(v cue.Value) (queryir.Predicate, error) {
	kind, body, err := singleKey(v, "predicate")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "term":
		f, err := p.field(body, "field", "term")
		if err != nil {
			return nil, err
		}
		val, err := lookupValue(body, "value", "term")
		if err != nil {
			return nil, err
		}
		return queryir.Term{Field: f, Value: val}, nil
	case "terms":
		f, err := p.field(body, "field", "terms")
		if err != nil {
			return nil, err
		}
		list, err := lookupValue(body, "values", "terms")
		if err != nil {
			return nil, err
		}
		arr, ok := list.(ir.Array)
		if !ok {
			return nil, &CompileError{Field: "predicate", Message: "terms: values must be a list", Pos: body.Pos()}
		}
		return queryir.Terms{Field: f, Values: []ir.Value(arr)}, nil
	case "range":
		return p.rangePredicate(body)
	case "match":
		f, err := p.field(body, "field", "match")
		if err != nil {
			return nil, err
		}
		text, err := requiredString(body, "query", "match.query")
		if err != nil {
			return nil, err
		}
		op, err := optionalString(body, "operator")
		if err != nil {
			return nil, err
		}
		return queryir.Match{Field: f, Text: text, Operator: op}, nil
	case "prefix":
		f, err := p.field(body, "field", "prefix")
		if err != nil {
			return nil, err
		}
		val, err := requiredString(body, "value", "prefix.value")
		if err != nil {
			return nil, err
		}
		return queryir.Prefix{Field: f, Value: val}, nil
	case "exists":
		f, err := p.field(body, "field", "exists")
		if err != nil {
			return nil, err
		}
		return queryir.Exists{Field: f}, nil
	case "and", "or":
		preds, err := p.predicateList(body)
		if err != nil {
			return nil, err
		}
		if kind == "and" {
			return queryir.And{Predicates: preds}, nil
		}
		return queryir.Or{Predicates: preds}, nil
	case "not":
		inner, err := p.predicate(body)
		if err != nil {
			return nil, err
		}
		return queryir.Not{Predicate: inner}, nil
	case "nested":
		path, err := requiredString(body, "path", "nested.path")
		if err != nil {
			return nil, err
		}
		wv := body.LookupPath(cue.ParsePath("where"))
		if !wv.Exists() {
			return nil, &CompileError{Field: "predicate", Message: "nested: where is required", Pos: body.Pos()}
		}
		inner, err := p.predicate(wv)
		if err != nil {
			return nil, err
		}
		return queryir.Nested{Path: path, Predicate: inner}, nil
	case "script":
		expr, err := p.expression(body)
		if err != nil {
			return nil, err
		}
		return queryir.ScriptCondition{Expr: expr}, nil
	default:
		return nil, &CompileError{
			Field:   "predicate",
			Message: fmt.Sprintf("unknown predicate %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func (p *queryParser) predicateList(v cue.Value) ([]queryir.Predicate, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []queryir.Predicate
	for iter.Next() {
		pred, err := p.predicate(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, pred)
	}
	return out, nil
}

func (p *queryParser) rangePredicate(body cue.Value) (queryir.Predicate, error) {
	f, err := p.field(body, "field", "range")
	if err != nil {
		return nil, err
	}
	r := queryir.Range{Field: f}

	bound := func(exclusive, inclusive string) (ir.Value, bool, error) {
		ex := body.LookupPath(cue.ParsePath(exclusive))
		in := body.LookupPath(cue.ParsePath(inclusive))
		if ex.Exists() && in.Exists() {
			return nil, false, &CompileError{
				Field:   "predicate",
				Message: fmt.Sprintf("range: %s and %s are exclusive", exclusive, inclusive),
				Pos:     body.Pos(),
			}
		}
		switch {
		case in.Exists():
			val, err := cueValue(in)
			return val, true, err
		case ex.Exists():
			val, err := cueValue(ex)
			return val, false, err
		}
		return nil, false, nil
	}

	if r.Lower, r.IncludeLower, err = bound("gt", "gte"); err != nil {
		return nil, err
	}
	if r.Upper, r.IncludeUpper, err = bound("lt", "lte"); err != nil {
		return nil, err
	}
	if r.Format, err = optionalString(body, "format"); err != nil {
		return nil, err
	}
	return r, nil
}

// expression parses one of:
//
//	{field: "price"}
//	{literal: 2, type?: "long"}
//	{op: "*", left: E, right: E}   (also == != < <= > >=)
//	{func: "YEAR", args: [E...], type: "integer"}
//	{param: "v0", type?: "long"}
func (p *queryParser) expression(v cue.Value) (queryir.Expression, error) {
	has := func(key string) bool { return v.LookupPath(cue.ParsePath(key)).Exists() }

	switch {
	case has("field"):
		f, err := p.field(v, "field", "expression")
		if err != nil {
			return nil, err
		}
		return queryir.FieldRef{Field: f}, nil
	case has("literal"):
		val, err := lookupValue(v, "literal", "expression")
		if err != nil {
			return nil, err
		}
		typ, err := declaredType(v, literalType(val))
		if err != nil {
			return nil, err
		}
		return queryir.Literal{Value: val, Type: typ}, nil
	case has("op"):
		sym, err := requiredString(v, "op", "expression.op")
		if err != nil {
			return nil, err
		}
		left, err := p.subExpression(v, "left")
		if err != nil {
			return nil, err
		}
		right, err := p.subExpression(v, "right")
		if err != nil {
			return nil, err
		}
		if op, err := queryir.ParseArithOp(sym); err == nil {
			return queryir.Arithmetic{Op: op, Left: left, Right: right}, nil
		}
		op, err := queryir.ParseCompareOp(sym)
		if err != nil {
			return nil, &CompileError{Field: "expression", Message: fmt.Sprintf("unknown operator %q", sym), Pos: v.Pos()}
		}
		return queryir.Comparison{Op: op, Left: left, Right: right}, nil
	case has("func"):
		name, err := requiredString(v, "func", "expression.func")
		if err != nil {
			return nil, err
		}
		if !has("type") {
			return nil, &CompileError{Field: "expression", Message: fmt.Sprintf("func %s: type is required", name), Pos: v.Pos()}
		}
		typ, err := declaredType(v, "")
		if err != nil {
			return nil, err
		}
		var args []queryir.Expression
		if av := v.LookupPath(cue.ParsePath("args")); av.Exists() {
			iter, err := av.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for iter.Next() {
				arg, err := p.expression(iter.Value())
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		return queryir.Function{Name: name, Args: args, Type: typ}, nil
	case has("param"):
		name, err := requiredString(v, "param", "expression.param")
		if err != nil {
			return nil, err
		}
		typ, err := declaredType(v, queryir.TypeLong)
		if err != nil {
			return nil, err
		}
		return queryir.Param{Name: name, Type: typ}, nil
	default:
		return nil, &CompileError{
			Field:   "expression",
			Message: "expected one of field, literal, op, func, param",
			Pos:     v.Pos(),
		}
	}
}

func (p *queryParser) subExpression(v cue.Value, key string) (queryir.Expression, error) {
	sv := v.LookupPath(cue.ParsePath(key))
	if !sv.Exists() {
		return nil, &CompileError{Field: "expression", Message: key + " operand is required", Pos: v.Pos()}
	}
	return p.expression(sv)
}

func declaredType(v cue.Value, fallback queryir.DataType) (queryir.DataType, error) {
	name, err := optionalString(v, "type")
	if err != nil {
		return "", err
	}
	if name == "" {
		return fallback, nil
	}
	dt, err := queryir.ParseDataType(name)
	if err != nil {
		return "", &CompileError{Field: "type", Message: err.Error(), Pos: v.Pos()}
	}
	return dt, nil
}

func literalType(v ir.Value) queryir.DataType {
	switch v.(type) {
	case ir.Int:
		return queryir.TypeLong
	case ir.Bool:
		return queryir.TypeBoolean
	default:
		return queryir.TypeKeyword
	}
}

func (p *queryParser) sorts(v cue.Value) ([]queryir.Sort, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []queryir.Sort
	for iter.Next() {
		sv := iter.Value()
		dirName, err := optionalString(sv, "dir")
		if err != nil {
			return nil, err
		}
		dir, err := queryir.ParseDirection(dirName)
		if err != nil {
			return nil, &CompileError{Field: "order_by", Message: err.Error(), Pos: sv.Pos()}
		}

		switch {
		case sv.LookupPath(cue.ParsePath("field")).Exists():
			name, err := requiredString(sv, "field", "order_by.field")
			if err != nil {
				return nil, err
			}
			// nil when undeclared: dropped at compile time
			out = append(out, queryir.AttributeSort{Attribute: p.fields[name], Direction: dir})
		case sv.LookupPath(cue.ParsePath("script")).Exists():
			expr, err := p.expression(sv.LookupPath(cue.ParsePath("script")))
			if err != nil {
				return nil, err
			}
			out = append(out, queryir.ScriptSort{Expr: expr, Direction: dir})
		case sv.LookupPath(cue.ParsePath("score")).Exists():
			out = append(out, queryir.ScoreSort{Direction: dir})
		default:
			return nil, &CompileError{
				Field:   "order_by",
				Message: "expected one of field, script, score",
				Pos:     sv.Pos(),
			}
		}
	}
	return out, nil
}
