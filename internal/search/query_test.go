package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/searchc/internal/ir"
)

func TestQueryRender(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  ir.Object
	}{
		{
			name:  "match all",
			query: MatchAll{},
			want:  ir.Object{"match_all": ir.Object{}},
		},
		{
			name:  "terms",
			query: Terms{Field: "tag", Values: []ir.Value{ir.String("a"), ir.String("b")}},
			want:  ir.Object{"terms": ir.Object{"tag": ir.Strings("a", "b")}},
		},
		{
			name:  "half open range",
			query: Range{Field: "age", Lower: ir.Int(18), IncludeLower: true},
			want:  ir.Object{"range": ir.Object{"age": ir.Object{"gte": ir.Int(18)}}},
		},
		{
			name:  "exclusive range with format",
			query: Range{Field: "at", Lower: ir.String("2020"), Upper: ir.String("2021"), Format: "yyyy"},
			want: ir.Object{"range": ir.Object{"at": ir.Object{
				"gt": ir.String("2020"), "lt": ir.String("2021"), "format": ir.String("yyyy"),
			}}},
		},
		{
			name:  "match with operator",
			query: Match{Field: "body", Text: "quick fox", Operator: "and"},
			want:  ir.Object{"match": ir.Object{"body": ir.Object{"query": ir.String("quick fox"), "operator": ir.String("and")}}},
		},
		{
			name:  "exists",
			query: Exists{Field: "email"},
			want:  ir.Object{"exists": ir.Object{"field": ir.String("email")}},
		},
		{
			name:  "constant score",
			query: ConstantScore{Filter: Prefix{Field: "sku", Value: "AB"}},
			want: ir.Object{"constant_score": ir.Object{
				"filter": ir.Object{"prefix": ir.Object{"sku": ir.Object{"value": ir.String("AB")}}},
			}},
		},
		{
			name:  "nested",
			query: Nested{Path: "authors", Query: Exists{Field: "authors.name"}, ScoreMode: "none"},
			want: ir.Object{"nested": ir.Object{
				"path":       ir.String("authors"),
				"query":      ir.Object{"exists": ir.Object{"field": ir.String("authors.name")}},
				"score_mode": ir.String("none"),
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.query.Render())
		})
	}
}

func TestBoolRender_OmitsEmptyClauses(t *testing.T) {
	q := Bool{
		Should:             []Query{Exists{Field: "a"}, Exists{Field: "b"}},
		MinimumShouldMatch: 1,
	}

	body := q.Render()["bool"].(ir.Object)
	assert.Len(t, body, 2)
	assert.Contains(t, body, "should")
	assert.Equal(t, ir.Int(1), body["minimum_should_match"])
}

func TestTermsAggRender(t *testing.T) {
	agg := &TermsAgg{Name: "by_tag", Field: "tag", Size: 10, Order: OrderDesc}
	agg.AddSubAggregation(Metric{Name: "p", Type: "percentiles", Field: "latency", Percents: []int{50, 99}})
	agg.SubPipelines = append(agg.SubPipelines, BucketSelector{
		Name:        "having",
		BucketsPath: map[string]string{"v0": "p[99]"},
		Script:      Script{Source: "params.v0 > 100"},
	})

	want := ir.Object{
		"terms": ir.Object{
			"field": ir.String("tag"),
			"size":  ir.Int(10),
			"order": ir.Object{"_key": ir.String("desc")},
		},
		"aggregations": ir.Object{
			"p": ir.Object{"percentiles": ir.Object{
				"field":    ir.String("latency"),
				"percents": ir.Array{ir.Int(50), ir.Int(99)},
			}},
			"having": ir.Object{"bucket_selector": ir.Object{
				"buckets_path": ir.Object{"v0": ir.String("p[99]")},
				"script":       ir.Object{"source": ir.String("params.v0 > 100"), "lang": ir.String("painless")},
			}},
		},
	}
	assert.Equal(t, want, agg.Render())
}

func TestTermsAggRender_ZeroSizeOmitted(t *testing.T) {
	agg := &TermsAgg{Name: "by_tag", Field: "tag"}
	body := agg.Render()["terms"].(ir.Object)
	assert.NotContains(t, body, "size")
	assert.NotContains(t, body, "order")
}
