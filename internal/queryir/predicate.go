package queryir

import "github.com/roach88/searchc/internal/ir"

// Predicate is a node of the filter tree.
//
// This is a sealed interface - only types in this package implement it.
// The compiler translates each node to a backend query clause.
//
// Predicate types:
//   - Term, Terms, Prefix: exact value matching
//   - Range: bounded comparison
//   - Match: full-text matching on analyzed fields
//   - Exists: field presence
//   - And, Or, Not: boolean combinators
//   - Nested: scopes a predicate to one element of a nested array
//   - ScriptCondition: a boolean expression evaluated per document
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Term matches documents whose field equals Value exactly.
type Term struct {
	Field *FieldAttribute
	Value ir.Value
}

func (Term) predicateNode() {}

// Terms matches documents whose field equals any of Values.
type Terms struct {
	Field  *FieldAttribute
	Values []ir.Value
}

func (Terms) predicateNode() {}

// Range matches documents whose field lies between Lower and Upper.
// A nil bound is open.
type Range struct {
	Field        *FieldAttribute
	Lower        ir.Value
	Upper        ir.Value
	IncludeLower bool
	IncludeUpper bool
	Format       string // date format, optional
}

func (Range) predicateNode() {}

// Match is a full-text match against an analyzed field.
type Match struct {
	Field    *FieldAttribute
	Text     string
	Operator string // "or" (default) or "and"
}

func (Match) predicateNode() {}

// Prefix matches documents whose field starts with Value.
type Prefix struct {
	Field *FieldAttribute
	Value string
}

func (Prefix) predicateNode() {}

// Exists matches documents that have a value for the field.
type Exists struct {
	Field *FieldAttribute
}

func (Exists) predicateNode() {}

// And requires all predicates. Empty means always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or requires at least one predicate.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Nested evaluates Predicate against individual elements of the nested
// array at Path. Its path and inner predicate also form the nested
// filtering context that sorts on fields under Path must agree with.
type Nested struct {
	Path      string
	Predicate Predicate
}

func (Nested) predicateNode() {}

// ScriptCondition filters with a boolean expression.
type ScriptCondition struct {
	Expr Expression
}

func (ScriptCondition) predicateNode() {}
