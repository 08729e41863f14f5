package querysearch

import (
	"fmt"

	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// nestedScoreMode keeps nested matches from contributing to the score.
const nestedScoreMode = "none"

// Translate converts a predicate tree into a backend query clause.
//
// Term-level predicates (term, terms, prefix, range) on analyzed fields
// are rewritten to the exact sibling when one exists; match keeps the
// analyzed field. Script conditions go through scripts, which may be nil
// when the tree holds none.
func Translate(p queryir.Predicate, scripts ScriptTranslator) (search.Query, error) {
	switch pred := p.(type) {
	case queryir.Term:
		return search.Term{Field: termField(pred.Field), Value: pred.Value}, nil
	case queryir.Terms:
		return search.Terms{Field: termField(pred.Field), Values: pred.Values}, nil
	case queryir.Prefix:
		return search.Prefix{Field: termField(pred.Field), Value: pred.Value}, nil
	case queryir.Range:
		return search.Range{
			Field:        termField(pred.Field),
			Lower:        pred.Lower,
			Upper:        pred.Upper,
			IncludeLower: pred.IncludeLower,
			IncludeUpper: pred.IncludeUpper,
			Format:       pred.Format,
		}, nil
	case queryir.Match:
		return search.Match{Field: pred.Field.Name, Text: pred.Text, Operator: pred.Operator}, nil
	case queryir.Exists:
		return search.Exists{Field: pred.Field.Name}, nil
	case queryir.And:
		clauses, err := translateAll(pred.Predicates, scripts)
		if err != nil {
			return nil, err
		}
		return search.Bool{Filter: clauses}, nil
	case queryir.Or:
		clauses, err := translateAll(pred.Predicates, scripts)
		if err != nil {
			return nil, err
		}
		return search.Bool{Should: clauses, MinimumShouldMatch: 1}, nil
	case queryir.Not:
		inner, err := Translate(pred.Predicate, scripts)
		if err != nil {
			return nil, err
		}
		return search.Bool{MustNot: []search.Query{inner}}, nil
	case queryir.Nested:
		inner, err := Translate(pred.Predicate, scripts)
		if err != nil {
			return nil, err
		}
		return search.Nested{Path: pred.Path, Query: inner, ScoreMode: nestedScoreMode}, nil
	case queryir.ScriptCondition:
		if scripts == nil {
			return nil, errNoTranslator("script condition")
		}
		script, err := scripts.TranslateScript(pred.Expr)
		if err != nil {
			return nil, err
		}
		return search.ScriptQuery{Script: script}, nil
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func translateAll(preds []queryir.Predicate, scripts ScriptTranslator) ([]search.Query, error) {
	out := make([]search.Query, 0, len(preds))
	for _, p := range preds {
		q, err := Translate(p, scripts)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// termField returns the field name to use for exact matching.
func termField(f *queryir.FieldAttribute) string {
	if exact := f.ExactAttribute(); exact != nil {
		return exact.Name
	}
	return f.Name
}

// NestedContext is one nested scope declared by a predicate tree.
type NestedContext struct {
	Path  string
	Query search.Query
}

// NestedContexts lists the nested scopes of a predicate in visiting
// order (pre-order, outer scopes before the scopes they contain). Each
// context carries the translated inner clause, ready to be used as a
// nested sort filter.
func NestedContexts(p queryir.Predicate, scripts ScriptTranslator) ([]NestedContext, error) {
	var out []NestedContext
	var walk func(queryir.Predicate) error
	walk = func(p queryir.Predicate) error {
		switch pred := p.(type) {
		case queryir.And:
			for _, sub := range pred.Predicates {
				if err := walk(sub); err != nil {
					return err
				}
			}
		case queryir.Or:
			for _, sub := range pred.Predicates {
				if err := walk(sub); err != nil {
					return err
				}
			}
		case queryir.Not:
			return walk(pred.Predicate)
		case queryir.Nested:
			inner, err := Translate(pred.Predicate, scripts)
			if err != nil {
				return err
			}
			out = append(out, NestedContext{Path: pred.Path, Query: inner})
			return walk(pred.Predicate)
		}
		return nil
	}
	if p == nil {
		return nil, nil
	}
	if err := walk(p); err != nil {
		return nil, err
	}
	return out, nil
}
