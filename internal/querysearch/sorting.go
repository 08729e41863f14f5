package querysearch

import (
	"fmt"

	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// sortResolver turns sort specifications into sort clauses for one
// compilation. Nested contexts of the predicate are translated at most
// once, on the first nested attribute sort.
type sortResolver struct {
	c        *Compiler
	query    queryir.Predicate
	contexts []NestedContext
	loaded   bool
}

// resolve returns the clause for s, or nil when s is dropped.
func (r *sortResolver) resolve(s queryir.Sort) (search.Sort, error) {
	switch sort := s.(type) {
	case queryir.AttributeSort:
		return r.attributeSort(sort)
	case queryir.ScriptSort:
		if r.c.scripts == nil {
			return nil, errNoTranslator("script sort")
		}
		script, err := r.c.scripts.TranslateScript(sort.Expr)
		if err != nil {
			return nil, err
		}
		typ := search.ScriptSortString
		if sort.Expr.DataType().IsNumeric() {
			typ = search.ScriptSortNumber
		}
		return search.ScriptSort{Script: script, Type: typ, Order: order(sort.Dir())}, nil
	case queryir.ScoreSort:
		return search.ScoreSort{Order: order(sort.Dir())}, nil
	default:
		return nil, fmt.Errorf("unsupported sort type: %T", s)
	}
}

func (r *sortResolver) attributeSort(s queryir.AttributeSort) (search.Sort, error) {
	if s.Attribute == nil {
		r.c.logger.Debug("sort dropped: unresolved attribute")
		return nil, nil
	}
	field := s.Attribute.ExactAttribute()
	if field == nil {
		r.c.logger.Debug("sort dropped: analyzed field without exact sub-field",
			"field", s.Attribute.Name)
		return nil, nil
	}

	fs := &search.FieldSort{Field: field.Name, Order: order(s.Dir())}
	paths := field.NestedPaths
	if !field.IsNested() {
		paths = s.Attribute.NestedPaths
	}
	for _, path := range paths {
		level := &search.NestedSort{Path: path}
		fs.AppendNested(level)
		if err := r.enrich(level); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// enrich copies the predicate's filter for level's path into level.
// A filter already present on the level is kept.
func (r *sortResolver) enrich(level *search.NestedSort) error {
	if r.query == nil || level.Filter != nil {
		return nil
	}
	if !r.loaded {
		contexts, err := NestedContexts(r.query, r.c.scripts)
		if err != nil {
			return err
		}
		r.contexts = contexts
		r.loaded = true
	}
	for _, ctx := range r.contexts {
		if ctx.Path == level.Path {
			level.Filter = ctx.Query
			return nil
		}
	}
	return nil
}
