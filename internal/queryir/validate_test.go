package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/searchc/internal/ir"
)

var (
	fieldYear  = &FieldAttribute{Name: "year", Type: TypeInteger}
	fieldGenre = &FieldAttribute{Name: "genre", Type: TypeKeyword}
	fieldBody  = &FieldAttribute{Name: "body", Type: TypeText}
)

func TestValidateValidContainer(t *testing.T) {
	c := &Container{
		Query:   And{Predicates: []Predicate{Term{Field: fieldGenre, Value: ir.String("scifi")}}},
		Columns: []Column{NewFieldColumn(fieldYear)},
		Sort:    []Sort{AttributeSort{Attribute: fieldYear, Direction: Desc}},
		Limit:   10,
	}

	result := Validate(c)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateNilContainer(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "nil container")
}

func TestValidateErrors(t *testing.T) {
	testCases := []struct {
		name      string
		container *Container
		contains  string
	}{
		{
			name:      "unbound term field",
			container: &Container{Query: Term{Value: ir.Int(1)}},
			contains:  "term: unbound field",
		},
		{
			name:      "empty or",
			container: &Container{Query: Or{}},
			contains:  "empty disjunction",
		},
		{
			name:      "nested without path",
			container: &Container{Query: Nested{Predicate: Exists{Field: fieldYear}}},
			contains:  "nested: empty path",
		},
		{
			name: "duplicate aggregation ids",
			container: &Container{Aggs: Aggs{
				Groups:  []GroupingAgg{GroupByColumn{ID: "a", Field: fieldGenre}},
				Metrics: []MetricAgg{{ID: "a", Func: MetricMax, Field: fieldYear}},
			}},
			contains: `duplicate aggregation id "a"`,
		},
		{
			name: "group by analyzed field",
			container: &Container{Aggs: Aggs{
				Groups: []GroupingAgg{GroupByColumn{ID: "g", Field: fieldBody}},
			}},
			contains: "cannot group by analyzed field",
		},
		{
			name:      "aggs only without aggregations",
			container: &Container{AggsOnly: true},
			contains:  "aggs_only",
		},
		{
			name:      "doc values on text",
			container: &Container{Columns: []Column{FieldColumn{Field: fieldBody, Retrieval: FromDocValues}}},
			contains:  "has no doc values",
		},
		{
			name: "bucket selector without condition",
			container: &Container{Aggs: Aggs{
				Groups: []GroupingAgg{GroupByColumn{ID: "g", Field: fieldGenre, Sub: SubAggs{
					Pipelines: []PipelineAgg{BucketSelector{ID: "having", BucketsPath: map[string]string{"c": "_count"}}},
				}}},
			}},
			contains: "without condition",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.container)
			assert.False(t, result.Valid)
			joined := ""
			for _, e := range result.Errors {
				joined += e + "\n"
			}
			assert.Contains(t, joined, tc.contains)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	c := &Container{
		Sort: []Sort{
			AttributeSort{},
			AttributeSort{Attribute: fieldBody},
		},
		Aggs: Aggs{Groups: []GroupingAgg{GroupByColumn{ID: "g", Field: fieldGenre}}},
	}

	result := Validate(c)

	assert.True(t, result.Valid, "warnings do not invalidate")
	assert.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "sort ignored")
	assert.Contains(t, result.Warnings[1], "unresolved attribute")
	assert.Contains(t, result.Warnings[2], `"body" is analyzed`)
}
