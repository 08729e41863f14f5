package queryir

import (
	"fmt"
	"slices"
)

// Aggs is the grouping/aggregation plan of a container.
//
// Groups are ordered: Groups[0] is the root grouping and every later group
// nests inside the previous one. Metrics and Pipelines at this level are
// independent of the groups (top-level siblings).
//
// Invariant: only the root grouping is eligible for row-limit push-down.
type Aggs struct {
	Groups    []GroupingAgg
	Metrics   []MetricAgg
	Pipelines []PipelineAgg
}

// IsEmpty reports whether the plan declares no aggregation at all.
func (a Aggs) IsEmpty() bool {
	return len(a.Groups) == 0 && len(a.Metrics) == 0 && len(a.Pipelines) == 0
}

// RootGroup returns the outermost grouping, if any.
func (a Aggs) RootGroup() (GroupingAgg, bool) {
	if len(a.Groups) == 0 {
		return nil, false
	}
	return a.Groups[0], true
}

// WithGroups returns a copy of the plan with its groups replaced.
// The receiver is left untouched.
func (a Aggs) WithGroups(groups []GroupingAgg) Aggs {
	return Aggs{
		Groups:    slices.Clone(groups),
		Metrics:   slices.Clone(a.Metrics),
		Pipelines: slices.Clone(a.Pipelines),
	}
}

// SubAggs holds the aggregations computed inside each bucket of a group.
type SubAggs struct {
	Metrics   []MetricAgg
	Pipelines []PipelineAgg
}

func (s SubAggs) clone() SubAggs {
	return SubAggs{Metrics: slices.Clone(s.Metrics), Pipelines: slices.Clone(s.Pipelines)}
}

// GroupingAgg is a bucketing stage.
//
// This is a sealed interface: GroupByColumn, GroupByScript and
// GroupByDateHistogram.
type GroupingAgg interface {
	groupingNode() // Marker method - seals interface to this package
	GroupID() string
	Children() SubAggs
}

// GroupByColumn buckets by the distinct values of a field.
// Limit <= 0 asks for every bucket.
type GroupByColumn struct {
	ID        string
	Field     *FieldAttribute
	Limit     int
	Direction Direction
	Sub       SubAggs
}

func (GroupByColumn) groupingNode() {}

// GroupID returns the aggregation name.
func (g GroupByColumn) GroupID() string { return g.ID }

// Children returns the per-bucket aggregations.
func (g GroupByColumn) Children() SubAggs { return g.Sub }

// WithLimit returns a size-limited copy of the group.
func (g GroupByColumn) WithLimit(limit int) GroupByColumn {
	g.Sub = g.Sub.clone()
	g.Limit = limit
	return g
}

// GroupByScript buckets by the value of an expression.
type GroupByScript struct {
	ID        string
	Expr      Expression
	Direction Direction
	Sub       SubAggs
}

func (GroupByScript) groupingNode() {}

// GroupID returns the aggregation name.
func (g GroupByScript) GroupID() string { return g.ID }

// Children returns the per-bucket aggregations.
func (g GroupByScript) Children() SubAggs { return g.Sub }

// GroupByDateHistogram buckets a date field into fixed intervals.
type GroupByDateHistogram struct {
	ID        string
	Field     *FieldAttribute
	Interval  string // e.g. "1d", "1M"
	Direction Direction
	Sub       SubAggs
}

func (GroupByDateHistogram) groupingNode() {}

// GroupID returns the aggregation name.
func (g GroupByDateHistogram) GroupID() string { return g.ID }

// Children returns the per-bucket aggregations.
func (g GroupByDateHistogram) Children() SubAggs { return g.Sub }

// MetricFunc names a single-field metric aggregation.
type MetricFunc string

const (
	MetricAvg           MetricFunc = "avg"
	MetricSum           MetricFunc = "sum"
	MetricMin           MetricFunc = "min"
	MetricMax           MetricFunc = "max"
	MetricCardinality   MetricFunc = "cardinality"
	MetricValueCount    MetricFunc = "value_count"
	MetricStats         MetricFunc = "stats"
	MetricExtendedStats MetricFunc = "extended_stats"
	MetricPercentiles   MetricFunc = "percentiles"
)

// ParseMetricFunc validates a metric function name.
func ParseMetricFunc(s string) (MetricFunc, error) {
	switch f := MetricFunc(s); f {
	case MetricAvg, MetricSum, MetricMin, MetricMax, MetricCardinality,
		MetricValueCount, MetricStats, MetricExtendedStats, MetricPercentiles:
		return f, nil
	default:
		return "", fmt.Errorf("unknown metric function %q", s)
	}
}

// MetricAgg computes a value over the documents of its enclosing bucket
// (or of the whole result when top-level).
type MetricAgg struct {
	ID       string
	Func     MetricFunc
	Field    *FieldAttribute
	Percents []int // percentiles only
}

// PipelineAgg is computed from other aggregations' outputs.
//
// This is a sealed interface: BucketSelector, BucketScript and
// BucketMetric.
type PipelineAgg interface {
	pipelineNode() // Marker method - seals interface to this package
	PipelineID() string
}

// BucketSelector drops buckets whose Condition is false (SQL HAVING).
// BucketsPath maps script parameter names to aggregation paths.
type BucketSelector struct {
	ID          string
	BucketsPath map[string]string
	Condition   Expression
}

func (BucketSelector) pipelineNode() {}

// PipelineID returns the aggregation name.
func (p BucketSelector) PipelineID() string { return p.ID }

// BucketScript computes a per-bucket value from other metrics.
type BucketScript struct {
	ID          string
	BucketsPath map[string]string
	Expr        Expression
}

func (BucketScript) pipelineNode() {}

// PipelineID returns the aggregation name.
func (p BucketScript) PipelineID() string { return p.ID }

// BucketMetricFunc names a sibling pipeline over a multi-bucket aggregation.
type BucketMetricFunc string

const (
	BucketAvg BucketMetricFunc = "avg_bucket"
	BucketMax BucketMetricFunc = "max_bucket"
	BucketMin BucketMetricFunc = "min_bucket"
	BucketSum BucketMetricFunc = "sum_bucket"
)

// ParseBucketMetricFunc validates a sibling pipeline function name.
func ParseBucketMetricFunc(s string) (BucketMetricFunc, error) {
	switch f := BucketMetricFunc(s); f {
	case BucketAvg, BucketMax, BucketMin, BucketSum:
		return f, nil
	default:
		return "", fmt.Errorf("unknown bucket metric function %q", s)
	}
}

// BucketMetric reduces a metric across the buckets of a sibling group.
type BucketMetric struct {
	ID          string
	Func        BucketMetricFunc
	BucketsPath string
}

func (BucketMetric) pipelineNode() {}

// PipelineID returns the aggregation name.
func (p BucketMetric) PipelineID() string { return p.ID }
