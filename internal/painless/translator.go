package painless

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/searchc/internal/ir"
	"github.com/roach88/searchc/internal/queryir"
	"github.com/roach88/searchc/internal/search"
)

// Lang is the script language tag.
const Lang = "painless"

var (
	// ErrUnsupportedFunction is returned for functions with no painless form.
	ErrUnsupportedFunction = errors.New("unsupported function")

	// ErrNoDocValues is returned when a field cannot be read from doc values.
	ErrNoDocValues = errors.New("field has no doc values")
)

// dateFields maps date extraction functions to their ChronoField.
var dateFields = map[string]string{
	"YEAR":             "YEAR",
	"MONTH":            "MONTH_OF_YEAR",
	"MONTH_OF_YEAR":    "MONTH_OF_YEAR",
	"DAY":              "DAY_OF_MONTH",
	"DAY_OF_MONTH":     "DAY_OF_MONTH",
	"DAY_OF_WEEK":      "DAY_OF_WEEK",
	"DAY_OF_YEAR":      "DAY_OF_YEAR",
	"HOUR":             "HOUR_OF_DAY",
	"HOUR_OF_DAY":      "HOUR_OF_DAY",
	"MINUTE":           "MINUTE_OF_HOUR",
	"MINUTE_OF_HOUR":   "MINUTE_OF_HOUR",
	"SECOND":           "SECOND_OF_MINUTE",
	"SECOND_OF_MINUTE": "SECOND_OF_MINUTE",
}

// mathFunctions are single-argument java.lang.Math calls.
var mathFunctions = map[string]string{
	"ABS":   "Math.abs",
	"CEIL":  "Math.ceil",
	"FLOOR": "Math.floor",
	"ROUND": "Math.round",
	"SQRT":  "Math.sqrt",
	"SIGN":  "Math.signum",
}

// stringMethods are zero-argument String methods.
var stringMethods = map[string]string{
	"LOWER":  "toLowerCase",
	"UPPER":  "toUpperCase",
	"TRIM":   "trim",
	"LENGTH": "length",
}

// Translator is the default expression translator. It is stateless and
// safe for concurrent use.
type Translator struct{}

// New returns a Translator.
func New() Translator {
	return Translator{}
}

// TranslateScript returns the painless script for expr.
func (Translator) TranslateScript(expr queryir.Expression) (search.Script, error) {
	w := &writer{params: ir.Object{}, reserved: map[string]bool{}}
	reserveParams(expr, w.reserved)
	if err := w.write(expr); err != nil {
		return search.Script{}, err
	}
	script := search.Script{Source: w.sb.String(), Lang: Lang}
	if len(w.params) > 0 {
		script.Params = w.params
	}
	return script, nil
}

// writer accumulates the source and the literal parameters of one script.
type writer struct {
	sb       strings.Builder
	params   ir.Object
	reserved map[string]bool
	next     int
}

func (w *writer) write(e queryir.Expression) error {
	switch expr := e.(type) {
	case queryir.FieldRef:
		f := expr.Field.ExactAttribute()
		if f == nil {
			return fmt.Errorf("field %q: %w", expr.Field.Name, ErrNoDocValues)
		}
		fmt.Fprintf(&w.sb, "doc[%s].value", quote(f.Name))
	case queryir.Literal:
		w.sb.WriteString("params.")
		w.sb.WriteString(w.addParam(expr.Value))
	case queryir.Param:
		w.sb.WriteString("params.")
		w.sb.WriteString(expr.Name)
	case queryir.Arithmetic:
		w.sb.WriteString("(")
		if err := w.write(expr.Left); err != nil {
			return err
		}
		fmt.Fprintf(&w.sb, " %s ", expr.Op)
		if err := w.write(expr.Right); err != nil {
			return err
		}
		w.sb.WriteString(")")
	case queryir.Comparison:
		w.sb.WriteString("(")
		if err := w.write(expr.Left); err != nil {
			return err
		}
		fmt.Fprintf(&w.sb, " %s ", expr.Op)
		if err := w.write(expr.Right); err != nil {
			return err
		}
		w.sb.WriteString(")")
	case queryir.Function:
		return w.writeFunction(expr)
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
	return nil
}

func (w *writer) writeFunction(f queryir.Function) error {
	name := strings.ToUpper(f.Name)
	if len(f.Args) != 1 {
		return fmt.Errorf("%s/%d: %w", name, len(f.Args), ErrUnsupportedFunction)
	}
	arg := f.Args[0]

	if chrono, ok := dateFields[name]; ok {
		if err := w.write(arg); err != nil {
			return err
		}
		fmt.Fprintf(&w.sb, ".get(ChronoField.%s)", chrono)
		return nil
	}
	if fn, ok := mathFunctions[name]; ok {
		w.sb.WriteString(fn)
		w.sb.WriteString("(")
		if err := w.write(arg); err != nil {
			return err
		}
		w.sb.WriteString(")")
		return nil
	}
	if method, ok := stringMethods[name]; ok {
		if err := w.write(arg); err != nil {
			return err
		}
		fmt.Fprintf(&w.sb, ".%s()", method)
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrUnsupportedFunction)
}

// addParam stores v under the next free vN name.
func (w *writer) addParam(v ir.Value) string {
	for {
		name := fmt.Sprintf("v%d", w.next)
		w.next++
		if !w.reserved[name] {
			w.params[name] = v
			return name
		}
	}
}

// reserveParams records the names of explicit parameters so literals do
// not shadow them.
func reserveParams(e queryir.Expression, names map[string]bool) {
	switch expr := e.(type) {
	case queryir.Param:
		names[expr.Name] = true
	case queryir.Arithmetic:
		reserveParams(expr.Left, names)
		reserveParams(expr.Right, names)
	case queryir.Comparison:
		reserveParams(expr.Left, names)
		reserveParams(expr.Right, names)
	case queryir.Function:
		for _, a := range expr.Args {
			reserveParams(a, names)
		}
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders s as a single-quoted Painless string literal.
func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}
