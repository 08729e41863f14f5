package search

import "github.com/roach88/searchc/internal/ir"

// SizeUnset marks a request whose result size has not been decided.
const SizeUnset = -1

// StoredFieldsNone is the sentinel that asks the backend for no stored
// fields at all. Without it the backend falls back to its default
// stored-field retrieval.
const StoredFieldsNone = "_none_"

// FetchSource controls retrieval of the document body.
type FetchSource struct {
	Fetch    bool
	Includes []string
}

// ScriptField is a value computed by the backend per hit.
type ScriptField struct {
	Name   string
	Script Script
}

// Request is a physical search request.
//
// Create requests with NewRequest so that Size starts as SizeUnset.
// Aggregations are the primary tree; Pipelines are registered after it
// because they may reference aggregations that must already exist.
type Request struct {
	Query          Query // nil = match all
	Aggregations   []Aggregation
	Pipelines      []PipelineAggregation
	Sort           []Sort
	Size           int
	FetchSource    *FetchSource // nil = backend default
	StoredFields   []string
	DocValueFields []string
	ScriptFields   []ScriptField
	TrackScores    bool
}

// NewRequest returns an empty request with an unset size.
func NewRequest() *Request {
	return &Request{Size: SizeUnset}
}

// AddAggregation registers a primary aggregation.
func (r *Request) AddAggregation(a Aggregation) {
	r.Aggregations = append(r.Aggregations, a)
}

// AddPipeline registers a pipeline aggregation.
func (r *Request) AddPipeline(p PipelineAggregation) {
	r.Pipelines = append(r.Pipelines, p)
}

// AddSort appends a sort clause.
func (r *Request) AddSort(s Sort) {
	r.Sort = append(r.Sort, s)
}

// HasAggregations reports whether any aggregation, primary or pipeline,
// is registered.
func (r *Request) HasAggregations() bool {
	return len(r.Aggregations) > 0 || len(r.Pipelines) > 0
}

// SizeSet reports whether a size has been assigned.
func (r *Request) SizeSet() bool {
	return r.Size != SizeUnset
}

// DisableSource stops document body retrieval. When no stored fields were
// requested it also asks for none, so the backend does not fall back to
// fetching them.
func (r *Request) DisableSource() {
	r.FetchSource = &FetchSource{Fetch: false}
	if r.StoredFields == nil {
		r.StoredFields = []string{StoredFieldsNone}
	}
}

// SourceDisabled reports whether body retrieval is explicitly off.
func (r *Request) SourceDisabled() bool {
	return r.FetchSource != nil && !r.FetchSource.Fetch
}

// Render returns the request DSL. Empty sections are omitted.
func (r *Request) Render() ir.Object {
	out := ir.Object{}
	if r.Query != nil {
		out["query"] = r.Query.Render()
	}
	if r.HasAggregations() {
		aggs := ir.Object{}
		for _, a := range r.Aggregations {
			aggs[a.AggName()] = a.Render()
		}
		for _, p := range r.Pipelines {
			aggs[p.AggName()] = p.Render()
		}
		out["aggregations"] = aggs
	}
	if len(r.Sort) > 0 {
		sorts := make(ir.Array, len(r.Sort))
		for i, s := range r.Sort {
			sorts[i] = s.Render()
		}
		out["sort"] = sorts
	}
	if r.SizeSet() {
		out["size"] = ir.Int(r.Size)
	}
	if r.FetchSource != nil {
		if r.FetchSource.Fetch {
			out["_source"] = ir.Object{"includes": ir.Strings(r.FetchSource.Includes...)}
		} else {
			out["_source"] = ir.Bool(false)
		}
	}
	if r.StoredFields != nil {
		out["stored_fields"] = ir.Strings(r.StoredFields...)
	}
	if len(r.DocValueFields) > 0 {
		out["docvalue_fields"] = ir.Strings(r.DocValueFields...)
	}
	if len(r.ScriptFields) > 0 {
		fields := ir.Object{}
		for _, sf := range r.ScriptFields {
			fields[sf.Name] = ir.Object{"script": sf.Script.Render()}
		}
		out["script_fields"] = fields
	}
	if r.TrackScores {
		out["track_scores"] = ir.Bool(true)
	}
	return out
}
