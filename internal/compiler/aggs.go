package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/searchc/internal/queryir"
)

// aggs parses group_by, metrics and pipelines. Metrics and pipelines with
// a group key are computed inside that group's buckets; the others are
// top-level.
//
//	group_by:  [{id: "by_tag", field: "tag", order: "desc"}]
//	metrics:   [{id: "avg_price", func: "avg", field: "price", group: "by_tag"}]
//	pipelines: [{id: "pricey", group: "by_tag", bucket_selector: {
//		buckets_path: {v0: "avg_price"}
//		condition: {op: ">", left: {param: "v0"}, right: {literal: 100}}
//	}}]
func (p *queryParser) aggs(v cue.Value) (queryir.Aggs, error) {
	var out queryir.Aggs
	subs := map[string]*queryir.SubAggs{}

	var groupIDs []string
	gv := v.LookupPath(cue.ParsePath("group_by"))
	if gv.Exists() {
		iter, err := gv.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		for iter.Next() {
			id, err := requiredString(iter.Value(), "id", "group_by.id")
			if err != nil {
				return out, err
			}
			groupIDs = append(groupIDs, id)
			subs[id] = &queryir.SubAggs{}
		}
	}

	target := func(item cue.Value) (*queryir.SubAggs, error) {
		group, err := optionalString(item, "group")
		if err != nil || group == "" {
			return nil, err
		}
		sub, ok := subs[group]
		if !ok {
			return nil, &CompileError{Field: "group_by", Message: fmt.Sprintf("unknown group %q", group), Pos: item.Pos()}
		}
		return sub, nil
	}

	if mv := v.LookupPath(cue.ParsePath("metrics")); mv.Exists() {
		iter, err := mv.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		for iter.Next() {
			m, err := p.metric(iter.Value())
			if err != nil {
				return out, err
			}
			sub, err := target(iter.Value())
			if err != nil {
				return out, err
			}
			if sub != nil {
				sub.Metrics = append(sub.Metrics, m)
			} else {
				out.Metrics = append(out.Metrics, m)
			}
		}
	}

	if pv := v.LookupPath(cue.ParsePath("pipelines")); pv.Exists() {
		iter, err := pv.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		for iter.Next() {
			pipe, err := p.pipeline(iter.Value())
			if err != nil {
				return out, err
			}
			sub, err := target(iter.Value())
			if err != nil {
				return out, err
			}
			if sub != nil {
				sub.Pipelines = append(sub.Pipelines, pipe)
			} else {
				out.Pipelines = append(out.Pipelines, pipe)
			}
		}
	}

	if gv.Exists() {
		iter, err := gv.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		i := 0
		for iter.Next() {
			g, err := p.group(iter.Value(), groupIDs[i], *subs[groupIDs[i]])
			if err != nil {
				return out, err
			}
			out.Groups = append(out.Groups, g)
			i++
		}
	}
	return out, nil
}

func (p *queryParser) group(v cue.Value, id string, sub queryir.SubAggs) (queryir.GroupingAgg, error) {
	orderName, err := optionalString(v, "order")
	if err != nil {
		return nil, err
	}
	dir, err := queryir.ParseDirection(orderName)
	if err != nil {
		return nil, &CompileError{Field: "group_by", Message: err.Error(), Pos: v.Pos()}
	}

	switch {
	case v.LookupPath(cue.ParsePath("field")).Exists():
		f, err := p.field(v, "field", "group_by")
		if err != nil {
			return nil, err
		}
		g := queryir.GroupByColumn{ID: id, Field: f, Direction: dir, Sub: sub}
		if lv := v.LookupPath(cue.ParsePath("limit")); lv.Exists() {
			n, err := lv.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			g.Limit = int(n)
		}
		return g, nil
	case v.LookupPath(cue.ParsePath("script")).Exists():
		expr, err := p.expression(v.LookupPath(cue.ParsePath("script")))
		if err != nil {
			return nil, err
		}
		return queryir.GroupByScript{ID: id, Expr: expr, Direction: dir, Sub: sub}, nil
	case v.LookupPath(cue.ParsePath("date_histogram")).Exists():
		hv := v.LookupPath(cue.ParsePath("date_histogram"))
		f, err := p.field(hv, "field", "date_histogram")
		if err != nil {
			return nil, err
		}
		interval, err := requiredString(hv, "interval", "date_histogram.interval")
		if err != nil {
			return nil, err
		}
		return queryir.GroupByDateHistogram{ID: id, Field: f, Interval: interval, Direction: dir, Sub: sub}, nil
	default:
		return nil, &CompileError{
			Field:   "group_by",
			Message: fmt.Sprintf("group %q: expected one of field, script, date_histogram", id),
			Pos:     v.Pos(),
		}
	}
}

func (p *queryParser) metric(v cue.Value) (queryir.MetricAgg, error) {
	var m queryir.MetricAgg
	var err error
	if m.ID, err = requiredString(v, "id", "metrics.id"); err != nil {
		return m, err
	}
	name, err := requiredString(v, "func", "metrics.func")
	if err != nil {
		return m, err
	}
	if m.Func, err = queryir.ParseMetricFunc(name); err != nil {
		return m, &CompileError{Field: "metrics", Message: err.Error(), Pos: v.Pos()}
	}
	if m.Field, err = p.field(v, "field", "metrics"); err != nil {
		return m, err
	}
	if pv := v.LookupPath(cue.ParsePath("percents")); pv.Exists() {
		iter, err := pv.List()
		if err != nil {
			return m, formatCUEError(err)
		}
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return m, &CompileError{Field: "metrics", Message: "percents must be ints", Pos: iter.Value().Pos()}
			}
			m.Percents = append(m.Percents, int(n))
		}
	}
	return m, nil
}

func (p *queryParser) pipeline(v cue.Value) (queryir.PipelineAgg, error) {
	id, err := requiredString(v, "id", "pipelines.id")
	if err != nil {
		return nil, err
	}

	if sv := v.LookupPath(cue.ParsePath("bucket_selector")); sv.Exists() {
		paths, err := bucketsPath(sv)
		if err != nil {
			return nil, err
		}
		cond, err := p.subExpression(sv, "condition")
		if err != nil {
			return nil, err
		}
		return queryir.BucketSelector{ID: id, BucketsPath: paths, Condition: cond}, nil
	}
	if sv := v.LookupPath(cue.ParsePath("bucket_script")); sv.Exists() {
		paths, err := bucketsPath(sv)
		if err != nil {
			return nil, err
		}
		expr, err := p.subExpression(sv, "expr")
		if err != nil {
			return nil, err
		}
		return queryir.BucketScript{ID: id, BucketsPath: paths, Expr: expr}, nil
	}
	if sv := v.LookupPath(cue.ParsePath("bucket_metric")); sv.Exists() {
		name, err := requiredString(sv, "func", "bucket_metric.func")
		if err != nil {
			return nil, err
		}
		fn, err := queryir.ParseBucketMetricFunc(name)
		if err != nil {
			return nil, &CompileError{Field: "pipelines", Message: err.Error(), Pos: sv.Pos()}
		}
		path, err := requiredString(sv, "buckets_path", "bucket_metric.buckets_path")
		if err != nil {
			return nil, err
		}
		return queryir.BucketMetric{ID: id, Func: fn, BucketsPath: path}, nil
	}
	return nil, &CompileError{
		Field:   "pipelines",
		Message: fmt.Sprintf("pipeline %q: expected one of bucket_selector, bucket_script, bucket_metric", id),
		Pos:     v.Pos(),
	}
}

func bucketsPath(v cue.Value) (map[string]string, error) {
	bv := v.LookupPath(cue.ParsePath("buckets_path"))
	if !bv.Exists() {
		return nil, &CompileError{Field: "pipelines", Message: "buckets_path is required", Pos: v.Pos()}
	}
	iter, err := bv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := map[string]string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out[iter.Selector().Unquoted()] = s
	}
	return out, nil
}
