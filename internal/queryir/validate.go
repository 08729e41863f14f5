package queryir

import (
	"fmt"
	"strings"
)

// ValidationResult reports problems found in a container.
//
// Errors are precondition violations: the compiler's behavior on such a
// container is unspecified. Warnings describe well-formed input that the
// compiler will handle in a possibly surprising way (a dropped sort, a
// sort ignored because the query aggregates).
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate checks a container before compilation.
//
// Rules:
//  1. Every field reference is bound to an attribute
//  2. Aggregation names are unique across the whole plan
//  3. Nested predicates name a path and wrap a predicate
//  4. AggsOnly requires an aggregation
//
// Validate is a pure function with no side effects.
func Validate(c *Container) ValidationResult {
	v := &validator{ids: map[string]bool{}}
	if c == nil {
		v.addError("nil container")
	} else {
		v.validateContainer(c)
	}
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
	ids      map[string]bool
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateContainer(c *Container) {
	if c.Query != nil {
		v.validatePredicate(c.Query)
	}
	for i, col := range c.Columns {
		v.validateColumn(fmt.Sprintf("columns[%d]", i), col)
	}
	v.validateAggs(c.Aggs)

	if c.AggsOnly && c.Aggs.IsEmpty() {
		v.addError("aggs_only is set but the plan declares no aggregation")
	}
	if len(c.Sort) > 0 && (len(c.Aggs.Groups) > 0 || len(c.Aggs.Metrics) > 0) {
		v.addWarning("sort ignored: aggregated results are ordered by the executor, not the request")
	}
	for i, s := range c.Sort {
		v.validateSort(i, s)
	}
}

func (v *validator) validateSort(i int, s Sort) {
	switch sort := s.(type) {
	case AttributeSort:
		if sort.Attribute == nil {
			v.addWarning("sort[%d]: unresolved attribute, sort will be dropped", i)
			return
		}
		if sort.Attribute.ExactAttribute() == nil {
			v.addWarning("sort[%d]: field %q is analyzed and has no exact sub-field, sort will be dropped",
				i, sort.Attribute.Name)
		}
	case ScriptSort:
		if sort.Expr == nil {
			v.addError("sort[%d]: script sort without expression", i)
			return
		}
		v.validateExpression(fmt.Sprintf("sort[%d]", i), sort.Expr)
	case ScoreSort:
	default:
		v.addError("sort[%d]: unknown sort type %T", i, s)
	}
}

func (v *validator) validateColumn(where string, col Column) {
	switch c := col.(type) {
	case FieldColumn:
		if c.Field == nil {
			v.addError("%s: field column without field", where)
			return
		}
		if c.Retrieval == FromDocValues && !c.Field.Type.HasDocValues() {
			v.addError("%s: field %q of type %s has no doc values", where, c.Field.Name, c.Field.Type)
		}
	case ScriptColumn:
		if c.Name == "" {
			v.addError("%s: script column without name", where)
		}
		if c.Expr == nil {
			v.addError("%s: script column without expression", where)
			return
		}
		v.validateExpression(where, c.Expr)
	case ComputedColumn:
		for i, in := range c.Inputs {
			v.validateColumn(fmt.Sprintf("%s.inputs[%d]", where, i), in)
		}
	case ScoreColumn, AggColumn:
	default:
		v.addError("%s: unknown column type %T", where, col)
	}
}

func (v *validator) validateAggs(a Aggs) {
	for i, g := range a.Groups {
		where := fmt.Sprintf("group[%d]", i)
		v.claimID(where, g.GroupID())
		switch group := g.(type) {
		case GroupByColumn:
			if group.Field == nil {
				v.addError("%s: group by column without field", where)
			} else if group.Field.IsInexact() {
				v.addError("%s: cannot group by analyzed field %q", where, group.Field.Name)
			}
		case GroupByScript:
			if group.Expr == nil {
				v.addError("%s: group by script without expression", where)
			} else {
				v.validateExpression(where, group.Expr)
			}
		case GroupByDateHistogram:
			if group.Field == nil {
				v.addError("%s: date histogram without field", where)
			}
			if group.Interval == "" {
				v.addError("%s: date histogram without interval", where)
			}
		default:
			v.addError("%s: unknown grouping type %T", where, g)
		}
		sub := g.Children()
		v.validateMetrics(where, sub.Metrics)
		v.validatePipelines(where, sub.Pipelines)
	}
	v.validateMetrics("aggs", a.Metrics)
	v.validatePipelines("aggs", a.Pipelines)
}

func (v *validator) validateMetrics(where string, metrics []MetricAgg) {
	for i, m := range metrics {
		at := fmt.Sprintf("%s.metrics[%d]", where, i)
		v.claimID(at, m.ID)
		if m.Field == nil {
			v.addError("%s: metric %s without field", at, m.Func)
		}
	}
}

func (v *validator) validatePipelines(where string, pipelines []PipelineAgg) {
	for i, p := range pipelines {
		at := fmt.Sprintf("%s.pipelines[%d]", where, i)
		v.claimID(at, p.PipelineID())
		switch pipe := p.(type) {
		case BucketSelector:
			if len(pipe.BucketsPath) == 0 {
				v.addError("%s: bucket selector without buckets path", at)
			}
			if pipe.Condition == nil {
				v.addError("%s: bucket selector without condition", at)
			}
		case BucketScript:
			if len(pipe.BucketsPath) == 0 {
				v.addError("%s: bucket script without buckets path", at)
			}
			if pipe.Expr == nil {
				v.addError("%s: bucket script without expression", at)
			}
		case BucketMetric:
			if pipe.BucketsPath == "" {
				v.addError("%s: %s without buckets path", at, pipe.Func)
			}
		default:
			v.addError("%s: unknown pipeline type %T", at, p)
		}
	}
}

func (v *validator) claimID(where, id string) {
	if id == "" {
		v.addError("%s: aggregation without id", where)
		return
	}
	if v.ids[id] {
		v.addError("%s: duplicate aggregation id %q", where, id)
		return
	}
	v.ids[id] = true
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Term:
		v.requireField("term", pred.Field)
	case Terms:
		v.requireField("terms", pred.Field)
		if len(pred.Values) == 0 {
			v.addWarning("terms on %q with no values matches nothing", fieldName(pred.Field))
		}
	case Range:
		v.requireField("range", pred.Field)
		if pred.Lower == nil && pred.Upper == nil {
			v.addWarning("range on %q has no bounds", fieldName(pred.Field))
		}
	case Match:
		v.requireField("match", pred.Field)
	case Prefix:
		v.requireField("prefix", pred.Field)
	case Exists:
		v.requireField("exists", pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		if len(pred.Predicates) == 0 {
			v.addError("or: empty disjunction")
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Not:
		if pred.Predicate == nil {
			v.addError("not: missing predicate")
			return
		}
		v.validatePredicate(pred.Predicate)
	case Nested:
		if strings.TrimSpace(pred.Path) == "" {
			v.addError("nested: empty path")
		}
		if pred.Predicate == nil {
			v.addError("nested %q: missing predicate", pred.Path)
			return
		}
		v.validatePredicate(pred.Predicate)
	case ScriptCondition:
		if pred.Expr == nil {
			v.addError("script: missing expression")
			return
		}
		v.validateExpression("script", pred.Expr)
	case nil:
		v.addError("nil predicate")
	default:
		v.addError("unknown predicate type %T", p)
	}
}

func (v *validator) validateExpression(where string, e Expression) {
	switch expr := e.(type) {
	case FieldRef:
		v.requireField(where, expr.Field)
	case Arithmetic:
		if expr.Left == nil || expr.Right == nil {
			v.addError("%s: arithmetic %s missing operand", where, expr.Op)
			return
		}
		v.validateExpression(where, expr.Left)
		v.validateExpression(where, expr.Right)
	case Comparison:
		if expr.Left == nil || expr.Right == nil {
			v.addError("%s: comparison %s missing operand", where, expr.Op)
			return
		}
		v.validateExpression(where, expr.Left)
		v.validateExpression(where, expr.Right)
	case Function:
		for _, arg := range expr.Args {
			if arg == nil {
				v.addError("%s: function %s has nil argument", where, expr.Name)
				continue
			}
			v.validateExpression(where, arg)
		}
	case Literal, Param:
	default:
		v.addError("%s: unknown expression type %T", where, e)
	}
}

func (v *validator) requireField(where string, f *FieldAttribute) {
	if f == nil {
		v.addError("%s: unbound field", where)
	}
}

func fieldName(f *FieldAttribute) string {
	if f == nil {
		return "<unbound>"
	}
	return f.Name
}
