package queryir

import (
	"fmt"

	"github.com/roach88/searchc/internal/ir"
)

// Expression is a backend-agnostic scalar computation.
//
// This is a sealed interface. Every expression declares its result type;
// the compiler uses it to choose numeric or string script sorting.
// Turning an expression into a backend script is the job of an injected
// translator (see querysearch.ScriptTranslator).
type Expression interface {
	expressionNode() // Marker method - seals interface to this package
	DataType() DataType
}

// FieldRef reads a document field.
type FieldRef struct {
	Field *FieldAttribute
}

func (FieldRef) expressionNode() {}

// DataType returns the referenced field's type.
func (f FieldRef) DataType() DataType { return f.Field.Type }

// Literal is a constant.
type Literal struct {
	Value ir.Value
	Type  DataType
}

func (Literal) expressionNode() {}

// DataType returns the declared literal type.
func (l Literal) DataType() DataType { return l.Type }

// ArithOp is a binary arithmetic operator.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
	OpMod ArithOp = "%"
)

// ParseArithOp validates an operator symbol.
func ParseArithOp(s string) (ArithOp, error) {
	switch op := ArithOp(s); op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return op, nil
	default:
		return "", fmt.Errorf("unknown arithmetic operator %q", s)
	}
}

// Arithmetic combines two numeric expressions.
type Arithmetic struct {
	Op    ArithOp
	Left  Expression
	Right Expression
}

func (Arithmetic) expressionNode() {}

// DataType is double when either side is floating point, long otherwise.
func (a Arithmetic) DataType() DataType {
	if isFloating(a.Left.DataType()) || isFloating(a.Right.DataType()) {
		return TypeDouble
	}
	return TypeLong
}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// ParseCompareOp validates a comparison symbol.
func ParseCompareOp(s string) (CompareOp, error) {
	switch op := CompareOp(s); op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return op, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// Comparison compares two expressions, as in a HAVING condition.
type Comparison struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

func (Comparison) expressionNode() {}

// DataType is always boolean.
func (Comparison) DataType() DataType { return TypeBoolean }

func isFloating(t DataType) bool {
	switch t {
	case TypeDouble, TypeFloat, TypeHalfFloat, TypeScaledFloat:
		return true
	}
	return false
}

// Function applies a named scalar function (e.g. YEAR, ABS, LOWER).
type Function struct {
	Name string
	Args []Expression
	Type DataType
}

func (Function) expressionNode() {}

// DataType returns the declared result type.
func (f Function) DataType() DataType { return f.Type }

// Param references a named script parameter, such as a bucket path
// variable inside a pipeline aggregation condition.
type Param struct {
	Name string
	Type DataType
}

func (Param) expressionNode() {}

// DataType returns the declared parameter type.
func (p Param) DataType() DataType { return p.Type }
