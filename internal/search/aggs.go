package search

import "github.com/roach88/searchc/internal/ir"

// Aggregation is a bucket or metric aggregation.
type Aggregation interface {
	AggName() string
	Render() ir.Object
}

// PipelineAggregation is computed from other aggregations' outputs.
// The aggregations it references must already be registered.
type PipelineAggregation interface {
	AggName() string
	Render() ir.Object
}

// TermsAgg buckets by distinct field (or script) values.
type TermsAgg struct {
	Name         string
	Field        string
	Script       *Script
	Size         int // 0 = backend default
	Order        Order
	SubAggs      []Aggregation
	SubPipelines []PipelineAggregation
}

// AggName returns the aggregation name.
func (a *TermsAgg) AggName() string { return a.Name }

// Render returns the terms aggregation.
func (a *TermsAgg) Render() ir.Object {
	body := ir.Object{}
	if a.Script != nil {
		body["script"] = a.Script.Render()
	} else {
		body["field"] = ir.String(a.Field)
	}
	if a.Size > 0 {
		body["size"] = ir.Int(a.Size)
	}
	if a.Order != "" {
		body["order"] = ir.Object{"_key": ir.String(a.Order)}
	}
	out := ir.Object{"terms": body}
	addSubAggs(out, a.SubAggs, a.SubPipelines)
	return out
}

// AddSubAggregation nests an aggregation inside each bucket.
func (a *TermsAgg) AddSubAggregation(sub Aggregation) {
	a.SubAggs = append(a.SubAggs, sub)
}

// DateHistogram buckets a date field into fixed intervals.
type DateHistogram struct {
	Name         string
	Field        string
	Interval     string
	Order        Order
	SubAggs      []Aggregation
	SubPipelines []PipelineAggregation
}

// AggName returns the aggregation name.
func (a *DateHistogram) AggName() string { return a.Name }

// AddSubAggregation nests an aggregation inside each bucket.
func (a *DateHistogram) AddSubAggregation(sub Aggregation) {
	a.SubAggs = append(a.SubAggs, sub)
}

// Render returns the date_histogram aggregation.
func (a *DateHistogram) Render() ir.Object {
	body := ir.Object{
		"field":    ir.String(a.Field),
		"interval": ir.String(a.Interval),
	}
	if a.Order != "" {
		body["order"] = ir.Object{"_key": ir.String(a.Order)}
	}
	out := ir.Object{"date_histogram": body}
	addSubAggs(out, a.SubAggs, a.SubPipelines)
	return out
}

// Metric is a single-field metric aggregation (avg, max, percentiles, ...).
type Metric struct {
	Name     string
	Type     string
	Field    string
	Percents []int
}

// AggName returns the aggregation name.
func (a Metric) AggName() string { return a.Name }

// Render returns {"<type>":{"field":...}}.
func (a Metric) Render() ir.Object {
	body := ir.Object{"field": ir.String(a.Field)}
	if len(a.Percents) > 0 {
		percents := make(ir.Array, len(a.Percents))
		for i, p := range a.Percents {
			percents[i] = ir.Int(p)
		}
		body["percents"] = percents
	}
	return ir.Object{a.Type: body}
}

// BucketSelector drops buckets whose script evaluates to false.
type BucketSelector struct {
	Name        string
	BucketsPath map[string]string
	Script      Script
}

// AggName returns the aggregation name.
func (a BucketSelector) AggName() string { return a.Name }

// Render returns the bucket_selector aggregation.
func (a BucketSelector) Render() ir.Object {
	return ir.Object{"bucket_selector": ir.Object{
		"buckets_path": renderBucketsPath(a.BucketsPath),
		"script":       a.Script.Render(),
	}}
}

// BucketScript computes a per-bucket value.
type BucketScript struct {
	Name        string
	BucketsPath map[string]string
	Script      Script
}

// AggName returns the aggregation name.
func (a BucketScript) AggName() string { return a.Name }

// Render returns the bucket_script aggregation.
func (a BucketScript) Render() ir.Object {
	return ir.Object{"bucket_script": ir.Object{
		"buckets_path": renderBucketsPath(a.BucketsPath),
		"script":       a.Script.Render(),
	}}
}

// BucketMetric is a sibling pipeline (avg_bucket, max_bucket, ...).
type BucketMetric struct {
	Name        string
	Type        string
	BucketsPath string
}

// AggName returns the aggregation name.
func (a BucketMetric) AggName() string { return a.Name }

// Render returns {"<type>":{"buckets_path":...}}.
func (a BucketMetric) Render() ir.Object {
	return ir.Object{a.Type: ir.Object{"buckets_path": ir.String(a.BucketsPath)}}
}

func renderBucketsPath(paths map[string]string) ir.Object {
	out := make(ir.Object, len(paths))
	for k, v := range paths {
		out[k] = ir.String(v)
	}
	return out
}

func addSubAggs(out ir.Object, aggs []Aggregation, pipelines []PipelineAggregation) {
	if len(aggs) == 0 && len(pipelines) == 0 {
		return
	}
	sub := ir.Object{}
	for _, a := range aggs {
		sub[a.AggName()] = a.Render()
	}
	for _, p := range pipelines {
		sub[p.AggName()] = p.Render()
	}
	out["aggregations"] = sub
}

// Names lists aggregation names in registration order.
func Names(aggs []Aggregation) []string {
	names := make([]string, 0, len(aggs))
	for _, a := range aggs {
		names = append(names, a.AggName())
	}
	return names
}
