package querysearch

import (
	"errors"
	"fmt"

	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

var errBoom = errors.New("boom")

// stubScripts renders an expression as its Go type name.
type stubScripts struct {
	err error
}

func (s stubScripts) TranslateScript(e queryir.Expression) (search.Script, error) {
	if s.err != nil {
		return search.Script{}, s.err
	}
	return search.Script{Source: fmt.Sprintf("%T", e)}, nil
}

var (
	titleField = &queryir.FieldAttribute{Name: "title", Type: queryir.TypeText}
	titleExact = &queryir.FieldAttribute{Name: "title.keyword", Type: queryir.TypeKeyword, Parent: titleField}
	bodyField  = &queryir.FieldAttribute{Name: "body", Type: queryir.TypeText}
	priceField = &queryir.FieldAttribute{Name: "price", Type: queryir.TypeLong}
	tagField   = &queryir.FieldAttribute{Name: "tag", Type: queryir.TypeKeyword}
	rawField   = &queryir.FieldAttribute{Name: "raw", Type: queryir.TypeKeyword}
	authorName = &queryir.FieldAttribute{
		Name: "authors.name", Type: queryir.TypeKeyword,
		NestedPaths: []string{"authors"},
	}
	bookYear = &queryir.FieldAttribute{
		Name: "authors.books.year", Type: queryir.TypeLong,
		NestedPaths: []string{"authors", "authors.books"},
	}
)

func init() {
	titleField.Exact = titleExact
}

func intPtr(n int) *int { return &n }

func newTestCompiler() *Compiler {
	return NewCompiler(stubScripts{})
}

var tenantFilter = search.Raw{Body: ir.Object{"term": ir.Object{"tenant": ir.String("acme")}}}
