package querysearch

import (
	"fmt"
	"math"

	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// DefaultGroupSize is the bucket count requested for a column grouping
// without a limit. The backend would otherwise return only its own
// default of ten buckets.
const DefaultGroupSize = math.MaxInt32

// bucketAgg is a physical aggregation that can hold sub-aggregations.
type bucketAgg interface {
	search.Aggregation
	AddSubAggregation(sub search.Aggregation)
}

// pushDownLimit caps the root grouping at limit when it groups by a
// single column. Every other aggregation, and the receiver, is left
// untouched. The second result reports whether the cap was applied.
func pushDownLimit(aggs queryir.Aggs, limit int) (queryir.Aggs, bool) {
	if limit <= 0 {
		return aggs, false
	}
	root, ok := aggs.RootGroup()
	if !ok {
		return aggs, false
	}
	byColumn, ok := root.(queryir.GroupByColumn)
	if !ok {
		return aggs, false
	}
	groups := make([]queryir.GroupingAgg, len(aggs.Groups))
	copy(groups, aggs.Groups)
	groups[0] = byColumn.WithLimit(limit)
	return aggs.WithGroups(groups), true
}

// buildAggs translates the plan into the primary aggregation tree and the
// top-level pipelines. Top-level metrics come first, then the grouping
// chain with each group nested inside the previous one.
func buildAggs(aggs queryir.Aggs, scripts ScriptTranslator) ([]search.Aggregation, []search.PipelineAggregation, error) {
	var primary []search.Aggregation
	for _, m := range aggs.Metrics {
		primary = append(primary, buildMetric(m))
	}

	var root, parent bucketAgg
	for _, g := range aggs.Groups {
		agg, err := buildGroup(g, scripts)
		if err != nil {
			return nil, nil, err
		}
		if root == nil {
			root = agg
		} else {
			parent.AddSubAggregation(agg)
		}
		parent = agg
	}
	if root != nil {
		primary = append(primary, root)
	}

	pipelines, err := buildPipelines(aggs.Pipelines, scripts)
	if err != nil {
		return nil, nil, err
	}
	return primary, pipelines, nil
}

func buildGroup(g queryir.GroupingAgg, scripts ScriptTranslator) (bucketAgg, error) {
	var agg bucketAgg
	switch group := g.(type) {
	case queryir.GroupByColumn:
		limit := group.Limit
		if limit <= 0 {
			limit = DefaultGroupSize
		}
		agg = &search.TermsAgg{
			Name:  group.ID,
			Field: termField(group.Field),
			Size:  limit,
			Order: order(group.Direction),
		}
	case queryir.GroupByScript:
		if scripts == nil {
			return nil, errNoTranslator(fmt.Sprintf("group %q", group.ID))
		}
		script, err := scripts.TranslateScript(group.Expr)
		if err != nil {
			return nil, err
		}
		agg = &search.TermsAgg{Name: group.ID, Script: &script, Order: order(group.Direction)}
	case queryir.GroupByDateHistogram:
		agg = &search.DateHistogram{
			Name:     group.ID,
			Field:    group.Field.Name,
			Interval: group.Interval,
			Order:    order(group.Direction),
		}
	default:
		return nil, fmt.Errorf("unsupported grouping type: %T", g)
	}

	sub := g.Children()
	for _, m := range sub.Metrics {
		agg.AddSubAggregation(buildMetric(m))
	}
	pipelines, err := buildPipelines(sub.Pipelines, scripts)
	if err != nil {
		return nil, err
	}
	switch a := agg.(type) {
	case *search.TermsAgg:
		a.SubPipelines = pipelines
	case *search.DateHistogram:
		a.SubPipelines = pipelines
	}
	return agg, nil
}

func buildMetric(m queryir.MetricAgg) search.Metric {
	return search.Metric{
		Name:     m.ID,
		Type:     string(m.Func),
		Field:    termField(m.Field),
		Percents: m.Percents,
	}
}

func buildPipelines(pipes []queryir.PipelineAgg, scripts ScriptTranslator) ([]search.PipelineAggregation, error) {
	var out []search.PipelineAggregation
	for _, p := range pipes {
		switch pipe := p.(type) {
		case queryir.BucketSelector:
			script, err := translatePipelineScript(pipe.ID, pipe.Condition, scripts)
			if err != nil {
				return nil, err
			}
			out = append(out, search.BucketSelector{Name: pipe.ID, BucketsPath: pipe.BucketsPath, Script: script})
		case queryir.BucketScript:
			script, err := translatePipelineScript(pipe.ID, pipe.Expr, scripts)
			if err != nil {
				return nil, err
			}
			out = append(out, search.BucketScript{Name: pipe.ID, BucketsPath: pipe.BucketsPath, Script: script})
		case queryir.BucketMetric:
			out = append(out, search.BucketMetric{Name: pipe.ID, Type: string(pipe.Func), BucketsPath: pipe.BucketsPath})
		default:
			return nil, fmt.Errorf("unsupported pipeline type: %T", p)
		}
	}
	return out, nil
}

func translatePipelineScript(id string, expr queryir.Expression, scripts ScriptTranslator) (search.Script, error) {
	if scripts == nil {
		return search.Script{}, errNoTranslator(fmt.Sprintf("pipeline %q", id))
	}
	return scripts.TranslateScript(expr)
}

func order(d queryir.Direction) search.Order {
	if d == queryir.Desc {
		return search.OrderDesc
	}
	return search.OrderAsc
}
