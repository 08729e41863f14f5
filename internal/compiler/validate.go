package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/searchc/internal/queryir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Mapping errors (E101-E109)
	ErrExactNotExact    = "E101" // exact sibling is itself analyzed
	ErrNestedPathOrder  = "E102" // nested paths not outermost-first prefixes
	ErrFieldOutsideNest = "E103" // field name not under its innermost nested path
	ErrParentHasParent  = "E104" // multi-field of a multi-field

	// Query errors (E110-E119)
	ErrInvalidQuery = "E110" // container precondition violated
	ErrNoQueries    = "E111" // definitions declare no query

	// Warnings (W110-W119)
	WarnQuery = "W110" // well-formed but surprising container
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled definitions against schema rules.
// Returns all errors found (does not fail-fast) and, separately, warnings
// that do not make the definitions invalid.
// Supports *Definitions, Mapping and *Query.
func Validate(v any) (errs, warnings []ValidationError) {
	switch d := v.(type) {
	case *Definitions:
		errs = validateMapping(d.Fields)
		if len(d.Queries) == 0 {
			errs = append(errs, ValidationError{
				Field:   "query",
				Message: "at least one query is required",
				Code:    ErrNoQueries,
			})
		}
		for i := range d.Queries {
			qe, qw := validateQuery(&d.Queries[i])
			errs = append(errs, qe...)
			warnings = append(warnings, qw...)
		}
		return errs, warnings
	case Mapping:
		return validateMapping(d), nil
	case *Query:
		return validateQuery(d)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}, nil
	}
}

// validateMapping checks field declarations in name order.
func validateMapping(m Mapping) []ValidationError {
	var errs []ValidationError

	for _, name := range m.Names() {
		f := m[name]
		field := "fields." + name

		// E101: exact sibling must be exact
		if f.Exact != nil && f.Exact.IsInexact() {
			errs = append(errs, ValidationError{
				Field:   field + ".exact",
				Message: fmt.Sprintf("exact sibling %q of %q is analyzed", f.Exact.Name, name),
				Code:    ErrExactNotExact,
			})
		}

		// E102: each nested path extends the previous one
		for i := 1; i < len(f.NestedPaths); i++ {
			if !strings.HasPrefix(f.NestedPaths[i], f.NestedPaths[i-1]+".") {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.nested[%d]", field, i),
					Message: fmt.Sprintf("nested path %q is not inside %q", f.NestedPaths[i], f.NestedPaths[i-1]),
					Code:    ErrNestedPathOrder,
				})
			}
		}

		// E103: the field lives under its innermost nested path
		if inner := f.NestedParent(); inner != "" && !strings.HasPrefix(name, inner+".") {
			errs = append(errs, ValidationError{
				Field:   field + ".nested",
				Message: fmt.Sprintf("field %q is not inside nested path %q", name, inner),
				Code:    ErrFieldOutsideNest,
			})
		}

		// E104: multi-fields are one level deep
		if f.Parent != nil && f.Parent.Parent != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".parent",
				Message: fmt.Sprintf("parent %q of %q is itself a sub-field", f.Parent.Name, name),
				Code:    ErrParentHasParent,
			})
		}
	}
	return errs
}

func validateQuery(q *Query) (errs, warnings []ValidationError) {
	field := "query." + q.Name
	line := 0
	if q.Pos.IsValid() {
		line = q.Pos.Line()
	}

	res := queryir.Validate(q.Container)
	for _, msg := range res.Errors {
		errs = append(errs, ValidationError{Field: field, Message: msg, Code: ErrInvalidQuery, Line: line})
	}
	for _, msg := range res.Warnings {
		warnings = append(warnings, ValidationError{Field: field, Message: msg, Code: WarnQuery, Line: line})
	}
	return errs, warnings
}
