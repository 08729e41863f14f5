package harness

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/searchc/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Path != "" {
		fmt.Fprintf(&buf, " at %s", e.Path)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEquals:
		return assertEquals(result.Request, a)
	case AssertExists:
		if _, ok := lookup(result.Request, a.Path); !ok {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: "present", Actual: "absent"}
		}
	case AssertAbsent:
		if v, ok := lookup(result.Request, a.Path); ok {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: "absent", Actual: render(v)}
		}
	case AssertLength:
		return assertLength(result.Request, a)
	case AssertFingerprint:
		if want := fmt.Sprint(a.Value); result.Fingerprint != want {
			return &AssertionError{Type: a.Type, Expected: want, Actual: result.Fingerprint}
		}
	case AssertWarning:
		want := fmt.Sprint(a.Value)
		for _, w := range result.Warnings {
			if strings.Contains(w, want) {
				return nil
			}
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("warning containing %q", want),
			Actual:   fmt.Sprintf("%q", result.Warnings),
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func assertEquals(req ir.Object, a Assertion) error {
	want, err := ir.FromGo(a.Value)
	if err != nil {
		return fmt.Errorf("equals at %s: expected value: %w", a.Path, err)
	}
	got, ok := lookup(req, a.Path)
	if !ok {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: render(want), Actual: "absent"}
	}
	if !reflect.DeepEqual(got, want) {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: render(want), Actual: render(got)}
	}
	return nil
}

func assertLength(req ir.Object, a Assertion) error {
	got, ok := lookup(req, a.Path)
	if !ok {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: fmt.Sprintf("%d entries", *a.Count), Actual: "absent"}
	}
	var n int
	switch v := got.(type) {
	case ir.Array:
		n = len(v)
	case ir.Object:
		n = len(v)
	default:
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: "array or object", Actual: render(got)}
	}
	if n != *a.Count {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: fmt.Sprintf("%d entries", *a.Count), Actual: fmt.Sprintf("%d entries", n)}
	}
	return nil
}

// parsePointer splits a JSON pointer into unescaped reference tokens.
// The empty pointer refers to the whole document.
func parsePointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("path %q must start with /", ptr)
	}
	tokens := strings.Split(ptr[1:], "/")
	for i, tok := range tokens {
		tokens[i] = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
	}
	return tokens, nil
}

// lookup resolves a JSON pointer against v.
func lookup(v ir.Value, ptr string) (ir.Value, bool) {
	tokens, err := parsePointer(ptr)
	if err != nil || v == nil {
		return nil, false
	}
	cur := v
	for _, tok := range tokens {
		switch node := cur.(type) {
		case ir.Object:
			next, ok := node[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case ir.Array:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// render formats a value for failure messages.
func render(v ir.Value) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
