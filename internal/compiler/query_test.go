package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/queryir"
)

const testFields = `
fields: {
	title:           {type: "text", exact: "title.keyword"}
	"title.keyword": {type: "keyword", parent: "title"}
	body:            {type: "text"}
	tag:             {type: "keyword"}
	price:           {type: "long"}
	published:       {type: "date"}
	"authors.name":  {type: "keyword", nested: ["authors"]}
	"authors.books.year": {type: "integer", nested: ["authors", "authors.books"]}
}
`

func compileDefs(t *testing.T, src string) (*Definitions, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(testFields + src)
	require.NoError(t, v.Err())
	return Compile(v)
}

func mustQuery(t *testing.T, src, name string) *queryir.Container {
	t.Helper()
	defs, err := compileDefs(t, src)
	require.NoError(t, err)
	q, ok := defs.Lookup(name)
	require.True(t, ok, "query %s not found", name)
	return q.Container
}

func TestCompileQueryBasic(t *testing.T) {
	c := mustQuery(t, `
		query: recent: {
			select:   ["title", "price", {score: true}]
			where:    {match: {field: "title", query: "go", operator: "and"}}
			order_by: [{field: "published", dir: "desc"}, {score: true}]
			limit:    20
		}
	`, "recent")

	require.Len(t, c.Columns, 3)
	assert.Equal(t, queryir.FromSource, c.Columns[0].(queryir.FieldColumn).Retrieval)
	assert.Equal(t, queryir.FromDocValues, c.Columns[1].(queryir.FieldColumn).Retrieval)
	assert.Equal(t, queryir.ScoreColumn{}, c.Columns[2])

	match := c.Query.(queryir.Match)
	assert.Equal(t, "title", match.Field.Name)
	assert.Equal(t, "go", match.Text)
	assert.Equal(t, "and", match.Operator)

	require.Len(t, c.Sort, 2)
	assert.Equal(t, queryir.Desc, c.Sort[0].Dir())
	assert.Equal(t, "published", c.Sort[0].(queryir.AttributeSort).Attribute.Name)
	assert.Equal(t, queryir.ScoreSort{Direction: queryir.Asc}, c.Sort[1])

	assert.Equal(t, 20, c.Limit)
	assert.False(t, c.AggsOnly)
}

func TestCompileQueryPredicates(t *testing.T) {
	c := mustQuery(t, `
		query: q: where: and: [
			{term: {field: "tag", value: "go"}},
			{terms: {field: "tag", values: ["a", "b"]}},
			{range: {field: "price", gte: 10, lt: 100}},
			{prefix: {field: "title", value: "Le"}},
			{exists: {field: "body"}},
			{or: [{not: {term: {field: "tag", value: "x"}}}]},
			{nested: {path: "authors", where: {term: {field: "authors.name", value: "ann"}}}},
			{script: {op: ">", left: {field: "price"}, right: {literal: 5}}},
		]
	`, "q")

	and := c.Query.(queryir.And)
	require.Len(t, and.Predicates, 8)

	assert.Equal(t, ir.String("go"), and.Predicates[0].(queryir.Term).Value)
	assert.Equal(t, []ir.Value{ir.String("a"), ir.String("b")}, and.Predicates[1].(queryir.Terms).Values)

	r := and.Predicates[2].(queryir.Range)
	assert.Equal(t, ir.Int(10), r.Lower)
	assert.True(t, r.IncludeLower)
	assert.Equal(t, ir.Int(100), r.Upper)
	assert.False(t, r.IncludeUpper)

	assert.Equal(t, "Le", and.Predicates[3].(queryir.Prefix).Value)
	assert.Equal(t, "body", and.Predicates[4].(queryir.Exists).Field.Name)

	or := and.Predicates[5].(queryir.Or)
	assert.IsType(t, queryir.Not{}, or.Predicates[0])

	nested := and.Predicates[6].(queryir.Nested)
	assert.Equal(t, "authors", nested.Path)

	script := and.Predicates[7].(queryir.ScriptCondition)
	cmp := script.Expr.(queryir.Comparison)
	assert.Equal(t, queryir.OpGt, cmp.Op)
	assert.Equal(t, queryir.Literal{Value: ir.Int(5), Type: queryir.TypeLong}, cmp.Right)
}

func TestCompileQueryAggregations(t *testing.T) {
	c := mustQuery(t, `
		query: stats: {
			group_by: [
				{id: "by_tag", field: "tag", order: "desc"},
				{id: "per_month", date_histogram: {field: "published", interval: "1M"}},
			]
			metrics: [
				{id: "total", func: "sum", field: "price"},
				{id: "avg_price", func: "avg", field: "price", group: "per_month"},
				{id: "p", func: "percentiles", field: "price", percents: [50, 99], group: "by_tag"},
			]
			pipelines: [
				{id: "pricey", group: "per_month", bucket_selector: {
					buckets_path: {v0: "avg_price"}
					condition: {op: ">", left: {param: "v0"}, right: {literal: 100}}
				}},
				{id: "best", bucket_metric: {func: "max_bucket", buckets_path: "by_tag>p[99]"}},
			]
			limit:     10
			aggs_only: true
		}
	`, "stats")

	require.Len(t, c.Aggs.Groups, 2)
	byTag := c.Aggs.Groups[0].(queryir.GroupByColumn)
	assert.Equal(t, "by_tag", byTag.ID)
	assert.Equal(t, queryir.Desc, byTag.Direction)
	require.Len(t, byTag.Sub.Metrics, 1)
	assert.Equal(t, []int{50, 99}, byTag.Sub.Metrics[0].Percents)

	month := c.Aggs.Groups[1].(queryir.GroupByDateHistogram)
	assert.Equal(t, "1M", month.Interval)
	assert.Equal(t, "avg_price", month.Sub.Metrics[0].ID)
	require.Len(t, month.Sub.Pipelines, 1)
	selector := month.Sub.Pipelines[0].(queryir.BucketSelector)
	assert.Equal(t, map[string]string{"v0": "avg_price"}, selector.BucketsPath)

	require.Len(t, c.Aggs.Metrics, 1)
	assert.Equal(t, queryir.MetricSum, c.Aggs.Metrics[0].Func)
	require.Len(t, c.Aggs.Pipelines, 1)
	assert.Equal(t, queryir.BucketMax, c.Aggs.Pipelines[0].(queryir.BucketMetric).Func)

	assert.True(t, c.AggsOnly)
	assert.Equal(t, 10, c.Limit)
}

func TestCompileQueryColumns(t *testing.T) {
	c := mustQuery(t, `
		query: cols: select: [
			{field: "tag", from: "stored"},
			{script: "double", expr: {op: "*", left: {field: "price"}, right: {literal: 2}}},
			{agg: "by_tag>_count"},
			{computed: "ratio", inputs: ["price", "title"]},
		]
	`, "cols")

	require.Len(t, c.Columns, 4)
	assert.Equal(t, queryir.FromStored, c.Columns[0].(queryir.FieldColumn).Retrieval)
	assert.Equal(t, "double", c.Columns[1].(queryir.ScriptColumn).Name)
	assert.Equal(t, queryir.AggColumn{Path: "by_tag>_count"}, c.Columns[2])
	assert.Len(t, c.Columns[3].(queryir.ComputedColumn).Inputs, 2)
}

func TestCompileQueryUnknownSortFieldIsUnresolved(t *testing.T) {
	c := mustQuery(t, `query: q: order_by: [{field: "nope"}]`, "q")

	require.Len(t, c.Sort, 1)
	assert.Nil(t, c.Sort[0].(queryir.AttributeSort).Attribute)
}

func TestCompileQueryErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown field in select",
			src:  `query: q: select: ["nope"]`,
			want: `unknown field "nope"`,
		},
		{
			name: "unknown predicate",
			src:  `query: q: where: {fuzzy: {field: "tag"}}`,
			want: `unknown predicate "fuzzy"`,
		},
		{
			name: "two keys in predicate",
			src:  `query: q: where: {exists: {field: "tag"}, term: {field: "tag", value: "x"}}`,
			want: "expected exactly one key",
		},
		{
			name: "float literal",
			src:  `query: q: where: {term: {field: "price", value: 1.5}}`,
			want: "float literals are not supported",
		},
		{
			name: "gt and gte",
			src:  `query: q: where: {range: {field: "price", gt: 1, gte: 2}}`,
			want: "gt and gte are exclusive",
		},
		{
			name: "unknown metric",
			src:  `query: q: metrics: [{id: "m", func: "median", field: "price"}]`,
			want: `unknown metric function "median"`,
		},
		{
			name: "metric in unknown group",
			src:  `query: q: metrics: [{id: "m", func: "avg", field: "price", group: "g"}]`,
			want: `unknown group "g"`,
		},
		{
			name: "func without type",
			src:  `query: q: select: [{script: "s", expr: {func: "YEAR", args: [{field: "published"}]}}]`,
			want: "type is required",
		},
		{
			name: "unknown operator",
			src:  `query: q: select: [{script: "s", expr: {op: "^", left: {field: "price"}, right: {literal: 1}}}]`,
			want: `unknown operator "^"`,
		},
		{
			name: "bad direction",
			src:  `query: q: order_by: [{score: true, dir: "up"}]`,
			want: `invalid direction "up"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileDefs(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(testFields+`
query: q: select: ["nope"]
`, cue.Filename("defs.cue"))
	require.NoError(t, v.Err())

	_, err := Compile(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
	assert.Equal(t, "defs.cue", ce.Pos.Filename())
	assert.Contains(t, err.Error(), "defs.cue:")
}

func TestCompileDeclarationOrder(t *testing.T) {
	defs, err := compileDefs(t, `
		query: zeta: limit: 1
		query: alpha: limit: 2
	`)
	require.NoError(t, err)

	require.Len(t, defs.Queries, 2)
	assert.Equal(t, "zeta", defs.Queries[0].Name)
	assert.Equal(t, "alpha", defs.Queries[1].Name)

	_, ok := defs.Lookup("missing")
	assert.False(t, ok)
}
