package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/searchc/internal/queryir"
)

func compileFields(t *testing.T, src string) (Mapping, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileMapping(v.LookupPath(cue.ParsePath("fields")))
}

func TestCompileMapping(t *testing.T) {
	m, err := compileFields(t, `
		fields: {
			"title.keyword": {type: "keyword", parent: "title"}
			title:           {type: "text", exact: "title.keyword"}
			price:           {type: "long"}
			"authors.books.year": {type: "integer", nested: ["authors", "authors.books"]}
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{"authors.books.year", "price", "title", "title.keyword"}, m.Names())

	title := m["title"]
	assert.Equal(t, queryir.TypeText, title.Type)
	assert.Same(t, m["title.keyword"], title.Exact)
	assert.Same(t, title, m["title.keyword"].Parent)
	assert.Equal(t, "title", m["title.keyword"].SourceName())

	year := m["authors.books.year"]
	assert.Equal(t, []string{"authors", "authors.books"}, year.NestedPaths)
	assert.Equal(t, "authors.books", year.NestedParent())
}

func TestCompileMappingErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing type",
			src:  `fields: price: {}`,
			want: "type is required",
		},
		{
			name: "unknown type",
			src:  `fields: price: {type: "money"}`,
			want: `unknown data type "money"`,
		},
		{
			name: "undeclared exact",
			src:  `fields: title: {type: "text", exact: "title.raw"}`,
			want: `exact sibling "title.raw" is not declared`,
		},
		{
			name: "undeclared parent",
			src:  `fields: "title.raw": {type: "keyword", parent: "title"}`,
			want: `parent "title" is not declared`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileFields(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)

			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}
