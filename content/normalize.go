// pdfbeaver - edit and optimize PDF content streams
// Copyright (C) 2026  The pdfbeaver authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package content

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"

	"github.com/qooxzuub/pdfbeaver/object"
)

// NormalizeError is returned by [Normalize] if a value cannot be converted
// into an instruction.
type NormalizeError struct {
	Value  any
	Reason string
}

func (err *NormalizeError) Error() string {
	return fmt.Sprintf("cannot normalize instruction %#v: %s", err.Value, err.Reason)
}

// Normalize converts a loosely typed handler return value into an [Item].
//
// The following shapes are recognized:
//   - Tuple{operands, operator}: an instruction.  A string operator is
//     converted to an OpName and a single operand which is not a slice is
//     wrapped into a one-element operand list.
//   - Tuple{operator}: a zero-operand instruction, if operator is a string.
//   - []byte or Raw: a chunk of bytes, copied to the output verbatim.
//   - string or OpName: a zero-operand instruction.
//   - Original, or a one-element slice holding Original: the marker.
//   - Operator, *Operator or Item: used as is.
//
// Any other value results in a [*NormalizeError].
func Normalize(v any) (Item, error) {
	switch x := v.(type) {
	case Item:
		return x, nil
	case Operator:
		return Instruction(x), nil
	case *Operator:
		if x == nil {
			return Item{}, &NormalizeError{Value: v, Reason: "nil operator"}
		}
		return Instruction(*x), nil
	case *Marker:
		if x == Original {
			return Item{Kind: KindOriginal}, nil
		}
	case Tuple:
		return normalizeTuple(x)
	case Raw:
		return RawItem(x), nil
	case []byte:
		return RawItem(x), nil
	case string:
		return Instruction(Operator{Name: OpName(x)}), nil
	case OpName:
		return Instruction(Operator{Name: x}), nil
	case []any:
		if len(x) == 1 && x[0] == Original {
			return Item{Kind: KindOriginal}, nil
		}
	}
	return Item{}, &NormalizeError{Value: v, Reason: "unsupported type"}
}

func normalizeTuple(x Tuple) (Item, error) {
	switch len(x) {
	case 2:
		var name OpName
		switch op := x[1].(type) {
		case string:
			name = OpName(op)
		case OpName:
			name = op
		case Operator:
			name = op.Name
		default:
			return Item{}, &NormalizeError{Value: x, Reason: "operator must be a string"}
		}
		args, err := operands(x[0])
		if err != nil {
			return Item{}, &NormalizeError{Value: x, Reason: err.Error()}
		}
		return Instruction(Operator{Name: name, Args: args}), nil
	case 1:
		switch op := x[0].(type) {
		case string, OpName:
			return Normalize(op)
		}
	}
	return Item{}, &NormalizeError{Value: x, Reason: "unsupported tuple"}
}

// operands converts the first element of a tuple into an operand list.
func operands(v any) ([]object.Object, error) {
	var list []any
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []object.Object:
		return x, nil
	case object.Array:
		return []object.Object(x), nil
	case []any:
		list = x
	case Tuple:
		list = x
	case []float64:
		res := make([]object.Object, len(x))
		for i, f := range x {
			res[i] = object.Real(f)
		}
		return res, nil
	case []int:
		res := make([]object.Object, len(x))
		for i, n := range x {
			res[i] = object.Integer(n)
		}
		return res, nil
	case matrix.Matrix:
		return matrixOperands(x), nil
	default:
		obj, err := Operand(v)
		if err != nil {
			return nil, err
		}
		return []object.Object{obj}, nil
	}

	res := make([]object.Object, len(list))
	for i, elem := range list {
		obj, err := Operand(elem)
		if err != nil {
			return nil, err
		}
		res[i] = obj
	}
	return res, nil
}

// Operand converts a Go value into a content stream operand.
//
// Values which already are objects are returned unchanged.  Go booleans,
// integers, floats, strings and byte slices are converted to the
// corresponding object types; slices become arrays and a matrix becomes an
// array of six numbers.
func Operand(v any) (object.Object, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case object.Object:
		return x, nil
	case bool:
		return object.Bool(x), nil
	case int:
		return object.Integer(x), nil
	case int8:
		return object.Integer(x), nil
	case int16:
		return object.Integer(x), nil
	case int32:
		return object.Integer(x), nil
	case int64:
		return object.Integer(x), nil
	case uint:
		return object.Integer(x), nil
	case uint8:
		return object.Integer(x), nil
	case uint16:
		return object.Integer(x), nil
	case uint32:
		return object.Integer(x), nil
	case uint64:
		return object.Integer(x), nil
	case float32:
		return object.Real(x), nil
	case float64:
		return object.Real(x), nil
	case string:
		return object.String(x), nil
	case []byte:
		return object.String(x), nil
	case matrix.Matrix:
		return object.Array(matrixOperands(x)), nil
	case []float64:
		a := make(object.Array, len(x))
		for i, f := range x {
			a[i] = object.Real(f)
		}
		return a, nil
	case []object.Object:
		return object.Array(x), nil
	case []any:
		a := make(object.Array, len(x))
		for i, elem := range x {
			obj, err := Operand(elem)
			if err != nil {
				return nil, err
			}
			a[i] = obj
		}
		return a, nil
	}
	return nil, fmt.Errorf("unsupported operand type %T", v)
}

func matrixOperands(m matrix.Matrix) []object.Object {
	res := make([]object.Object, 6)
	for i, x := range m {
		res[i] = object.Real(x)
	}
	return res
}
