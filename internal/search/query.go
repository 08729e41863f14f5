package search

import "github.com/roach88/searchc/internal/ir"

// Query is a backend query clause.
type Query interface {
	Render() ir.Object
}

// MatchAll matches every document.
type MatchAll struct{}

// Render returns {"match_all":{}}.
func (MatchAll) Render() ir.Object {
	return ir.Object{"match_all": ir.Object{}}
}

// Term is an exact value match.
type Term struct {
	Field string
	Value ir.Value
}

// Render returns the term clause.
func (q Term) Render() ir.Object {
	return ir.Object{"term": ir.Object{q.Field: ir.Object{"value": q.Value}}}
}

// Terms matches any of several exact values.
type Terms struct {
	Field  string
	Values []ir.Value
}

// Render returns the terms clause.
func (q Terms) Render() ir.Object {
	return ir.Object{"terms": ir.Object{q.Field: ir.Array(append([]ir.Value{}, q.Values...))}}
}

// Range is a bounded comparison. Nil bounds are omitted.
type Range struct {
	Field        string
	Lower        ir.Value
	Upper        ir.Value
	IncludeLower bool
	IncludeUpper bool
	Format       string
}

// Render returns the range clause.
func (q Range) Render() ir.Object {
	body := ir.Object{}
	if q.Lower != nil {
		if q.IncludeLower {
			body["gte"] = q.Lower
		} else {
			body["gt"] = q.Lower
		}
	}
	if q.Upper != nil {
		if q.IncludeUpper {
			body["lte"] = q.Upper
		} else {
			body["lt"] = q.Upper
		}
	}
	if q.Format != "" {
		body["format"] = ir.String(q.Format)
	}
	return ir.Object{"range": ir.Object{q.Field: body}}
}

// Match is a full-text query.
type Match struct {
	Field    string
	Text     string
	Operator string
}

// Render returns the match clause.
func (q Match) Render() ir.Object {
	body := ir.Object{"query": ir.String(q.Text)}
	if q.Operator != "" {
		body["operator"] = ir.String(q.Operator)
	}
	return ir.Object{"match": ir.Object{q.Field: body}}
}

// Prefix matches values starting with Value.
type Prefix struct {
	Field string
	Value string
}

// Render returns the prefix clause.
func (q Prefix) Render() ir.Object {
	return ir.Object{"prefix": ir.Object{q.Field: ir.Object{"value": ir.String(q.Value)}}}
}

// Exists matches documents with a value for Field.
type Exists struct {
	Field string
}

// Render returns the exists clause.
func (q Exists) Render() ir.Object {
	return ir.Object{"exists": ir.Object{"field": ir.String(q.Field)}}
}

// Bool combines clauses. Must clauses score, Filter and MustNot clauses
// do not.
type Bool struct {
	Must               []Query
	Filter             []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch int
}

// Render returns the bool clause, omitting empty occurrence lists.
func (q Bool) Render() ir.Object {
	body := ir.Object{}
	addClauses(body, "must", q.Must)
	addClauses(body, "filter", q.Filter)
	addClauses(body, "should", q.Should)
	addClauses(body, "must_not", q.MustNot)
	if q.MinimumShouldMatch > 0 {
		body["minimum_should_match"] = ir.Int(q.MinimumShouldMatch)
	}
	return ir.Object{"bool": body}
}

func addClauses(body ir.Object, key string, clauses []Query) {
	if len(clauses) == 0 {
		return
	}
	arr := make(ir.Array, len(clauses))
	for i, c := range clauses {
		arr[i] = c.Render()
	}
	body[key] = arr
}

// ConstantScore wraps a filter so it does not contribute to scoring.
type ConstantScore struct {
	Filter Query
}

// Render returns the constant_score clause.
func (q ConstantScore) Render() ir.Object {
	return ir.Object{"constant_score": ir.Object{"filter": q.Filter.Render()}}
}

// Nested evaluates Query against elements of the nested array at Path.
type Nested struct {
	Path      string
	Query     Query
	ScoreMode string
}

// Render returns the nested clause.
func (q Nested) Render() ir.Object {
	body := ir.Object{
		"path":  ir.String(q.Path),
		"query": q.Query.Render(),
	}
	if q.ScoreMode != "" {
		body["score_mode"] = ir.String(q.ScoreMode)
	}
	return ir.Object{"nested": body}
}

// ScriptQuery filters with a boolean script.
type ScriptQuery struct {
	Script Script
}

// Render returns the script clause.
func (q ScriptQuery) Render() ir.Object {
	return ir.Object{"script": ir.Object{"script": q.Script.Render()}}
}

// Raw is a clause already expressed in the backend DSL, such as a filter
// supplied by the caller.
type Raw struct {
	Body ir.Object
}

// Render returns the body unchanged.
func (q Raw) Render() ir.Object {
	return q.Body
}
