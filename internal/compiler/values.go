package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/searchc/internal/ir"
)

func lookupValue(v cue.Value, key, where string) (ir.Value, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return nil, &CompileError{Field: "value", Message: fmt.Sprintf("%s: %s is required", where, key), Pos: v.Pos()}
	}
	return cueValue(fv)
}

// cueValue converts a concrete CUE value to an IR value.
// Floats are rejected: literals must be exact.
func cueValue(v cue.Value) (ir.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Int(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.Array{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.Object{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Selector().Unquoted()] = item
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   "value",
			Message: "float literals are not supported, use int instead",
			Pos:     v.Pos(),
		}
	default:
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("value must be concrete, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}
